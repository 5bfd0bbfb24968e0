package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running without a subcommand serves the API.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account-service",
		Short: "User registration and bearer-token authentication API.",
		Long: `account-service registers users with bcrypt-hashed passwords and issues
short-lived HMAC-signed bearer tokens. Configuration comes from the environment
and an optional .env file.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations to POSTGRES_DSN",
			Args:  cobra.NoArgs,
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "createdb",
			Short: "Create the database named in POSTGRES_DSN if it does not exist",
			Args:  cobra.NoArgs,
			RunE:  runCreateDB,
		},
	)
	return cmd
}
