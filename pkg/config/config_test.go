package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPlusEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROVENANCE_DB_LOCATION", "PLUS_BACKEND", "PLUS_QUERY_LIMIT",
		"PLUS_TRAVERSAL_MAX_DEPTH", "PLUS_AUDIT_LOG_PATH",
		"PLUS_BOOTSTRAP_DISABLED", "PLUS_LATTICE_SEED_FILE",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearPlusEnv(t)
	cfg := LoadFromEnv()
	assert.Equal(t, "badger", cfg.Backend)
	assert.Equal(t, defaultQueryLimit, cfg.QueryLimit)
	assert.Equal(t, defaultMaxDepth, cfg.TraversalMaxDepth)
	assert.NotEmpty(t, cfg.DBLocation)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_OverridesFromEnvironment(t *testing.T) {
	clearPlusEnv(t)
	t.Setenv("PLUS_BACKEND", "memory")
	t.Setenv("PLUS_QUERY_LIMIT", "42")
	t.Setenv("PROVENANCE_DB_LOCATION", "/tmp/provenance-test.db")

	cfg := LoadFromEnv()
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 42, cfg.QueryLimit)
	assert.Equal(t, "/tmp/provenance-test.db", cfg.DBLocation)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "postgres", QueryLimit: 1, TraversalMaxDepth: 1, DBLocation: "x"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveQueryLimit(t *testing.T) {
	cfg := &Config{Backend: "memory", QueryLimit: 0, TraversalMaxDepth: 1}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsEmptyDBLocationForBadger(t *testing.T) {
	cfg := &Config{Backend: "badger", QueryLimit: 1, TraversalMaxDepth: 1, DBLocation: ""}
	assert.Error(t, cfg.Validate())
}
