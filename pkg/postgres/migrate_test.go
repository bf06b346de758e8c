package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEmbeddedMigrations_RejectsEmptySource(t *testing.T) {
	err := RunEmbeddedMigrations("postgres://localhost:1/none?sslmode=disable", fstest.MapFS{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres:")
}

func TestRunMigrations_UnknownSource(t *testing.T) {
	err := RunMigrations("postgres://localhost:1/none?sslmode=disable", "nosuchscheme://migrations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: create migrator")
}
