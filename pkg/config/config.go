// Package config loads process configuration from environment variables,
// following the teacher's env-var-driven LoadFromEnv/Validate pattern
// (trimmed to what this store actually needs — no Bolt/HTTP server
// config, no memory-decay tuning, no compliance-framework toggles).
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultQueryLimit = 500
	defaultMaxDepth   = 50
	defaultDBLocation = "provenance.db"
	defaultBackend    = "badger"
)

// Config holds process configuration loaded from the environment.
//
// Environment Variables:
//
//   - PROVENANCE_DB_LOCATION: path to the Badger data directory. Falls
//     back to $HOME/provenance.db.
//   - PLUS_BACKEND: "memory" or "badger" (default "badger").
//   - PLUS_QUERY_LIMIT: loaded into QueryLimit, which Validate checks is
//     positive; nothing else reads it (pkg/kernel.Query applies its own
//     fixed cap of 500).
//   - PLUS_TRAVERSAL_MAX_DEPTH: loaded into TraversalMaxDepth, which
//     Validate checks is positive; nothing else reads it (lineage depth
//     comes from model.TraversalSettings.MaxDepth).
//   - PLUS_AUDIT_LOG_PATH: destination for pkg/audit JSON-lines events.
//     Empty means client.Open attaches no audit logger.
//   - PLUS_BOOTSTRAP_DISABLED: test escape hatch, skips
//     GraphStore.Bootstrap when a caller wants an empty engine.
//   - PLUS_LATTICE_SEED_FILE: optional YAML file describing extra
//     PrivilegeClass nodes to seed beyond the built-in lattice.
type Config struct {
	DBLocation        string
	Backend           string
	QueryLimit        int
	TraversalMaxDepth int
	AuditLogPath      string
	BootstrapDisabled bool
	LatticeSeedFile   string
}

// LoadFromEnv builds a Config from environment variables, applying the
// documented defaults for anything unset.
func LoadFromEnv() *Config {
	dbLocation := getEnv("PROVENANCE_DB_LOCATION", "")
	if dbLocation == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dbLocation = home + string(os.PathSeparator) + defaultDBLocation
	}

	return &Config{
		DBLocation:        dbLocation,
		Backend:           getEnv("PLUS_BACKEND", defaultBackend),
		QueryLimit:        getEnvInt("PLUS_QUERY_LIMIT", defaultQueryLimit),
		TraversalMaxDepth: getEnvInt("PLUS_TRAVERSAL_MAX_DEPTH", defaultMaxDepth),
		AuditLogPath:      getEnv("PLUS_AUDIT_LOG_PATH", ""),
		BootstrapDisabled: getEnvBool("PLUS_BOOTSTRAP_DISABLED", false),
		LatticeSeedFile:   getEnv("PLUS_LATTICE_SEED_FILE", ""),
	}
}

// Validate rejects configuration values that cannot produce a working
// store.
func (c *Config) Validate() error {
	if c.Backend != "memory" && c.Backend != "badger" {
		return fmt.Errorf("config: PLUS_BACKEND must be \"memory\" or \"badger\", got %q", c.Backend)
	}
	if c.QueryLimit <= 0 {
		return fmt.Errorf("config: PLUS_QUERY_LIMIT must be positive, got %d", c.QueryLimit)
	}
	if c.TraversalMaxDepth <= 0 {
		return fmt.Errorf("config: PLUS_TRAVERSAL_MAX_DEPTH must be positive, got %d", c.TraversalMaxDepth)
	}
	if c.Backend == "badger" && c.DBLocation == "" {
		return fmt.Errorf("config: PROVENANCE_DB_LOCATION must not be empty for the badger backend")
	}
	return nil
}

// String returns a representation of Config safe for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Backend: %s, DBLocation: %s, QueryLimit: %d, TraversalMaxDepth: %d}",
		c.Backend, c.DBLocation, c.QueryLimit, c.TraversalMaxDepth)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		switch val {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultVal
}
