package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const maintenanceDatabase = "postgres"

// CreateDatabase creates the database named in dsn if it does not exist yet.
// It connects to the server's maintenance database to do so.
func CreateDatabase(ctx context.Context, dsn string, logger *zap.Logger) (bool, error) {
	connCfg, dbName, err := maintenanceConfig(dsn)
	if err != nil {
		return false, err
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return false, fmt.Errorf("connect to %s database: %w", maintenanceDatabase, err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check database: %w", err)
	}
	if exists {
		logger.Info("database already exists", zap.String("database", dbName))
		return false, nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return false, fmt.Errorf("create database: %w", err)
	}
	logger.Info("database created", zap.String("database", dbName))
	return true, nil
}

// maintenanceConfig rewrites dsn to point at the maintenance database and
// returns the originally requested database name.
func maintenanceConfig(dsn string) (*pgx.ConnConfig, string, error) {
	if dsn == "" {
		return nil, "", errors.New("POSTGRES_DSN is empty")
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("parse dsn: %w", err)
	}
	dbName := cfg.Database
	if dbName == "" || dbName == maintenanceDatabase {
		return nil, "", fmt.Errorf("dsn must name a database other than %q", maintenanceDatabase)
	}
	cfg.Database = maintenanceDatabase
	return cfg, dbName, nil
}
