package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreEmbeddedInOrder(t *testing.T) {
	names, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])

	content, err := migrationsFS.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	sql := string(content)
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS users"))
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS issues"))
	assert.True(t, strings.Contains(sql, "email         TEXT NOT NULL UNIQUE"))
}
