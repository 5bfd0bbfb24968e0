package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate", "createdb"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotNil(t, cmd.RunE, name)
	}
	assert.NotNil(t, root.RunE)
}

func TestBootstrapRejectsInvalidConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "")

	_, _, err := bootstrap()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestCreateDBRequiresDSN(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTGRES_DSN", "")

	root := newRootCmd()
	root.SetArgs([]string{"createdb"})
	root.SilenceErrors = true
	assert.Error(t, root.Execute())
}
