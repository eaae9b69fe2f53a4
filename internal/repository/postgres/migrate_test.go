package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	t.Run("Should create the catalog before the tables that reference it", func(t *testing.T) {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"001_catalog.sql", "002_talents.sql", "003_talent_cvs.sql"}, names)
	})

	t.Run("Should scope version uniqueness to live CVs", func(t *testing.T) {
		data, err := migrationsFS.ReadFile("migrations/003_talent_cvs.sql")
		require.NoError(t, err)
		sql := string(data)
		assert.Contains(t, sql, "ON talent_cvs (talent_id, job_role_level_id, version)")
		assert.Contains(t, sql, "WHERE deleted_at IS NULL")
	})

	t.Run("Should only use idempotent DDL", func(t *testing.T) {
		for _, e := range entries {
			data, err := migrationsFS.ReadFile("migrations/" + e.Name())
			require.NoError(t, err)
			for _, stmt := range strings.Split(string(data), ";") {
				stmt = strings.TrimSpace(stmt)
				if strings.HasPrefix(stmt, "CREATE") {
					assert.Contains(t, stmt, "IF NOT EXISTS", e.Name())
				}
			}
		}
	})
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"Go"}, nonNil([]string{"Go"}))
}
