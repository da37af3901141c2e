package client

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/orneryd/plus/pkg/audit"
	"github.com/orneryd/plus/pkg/config"
	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
)

var (
	processMu     sync.Mutex
	hookOnce      sync.Once
	processClient *Client
	processEngine kernel.Engine
)

// Open opens the process-wide store exactly once per process (spec.md
// §5's "process-wide initializer, guarded by a mutex"), building the
// engine, bootstrapping it, applying a lattice seed and audit logger per
// cfg, and wrapping the result in a Client. A second call — from any
// goroutine, with any cfg — returns the already-open Client unmutated;
// the store directory is the single shared resource of §5 and only one
// Client may hold it per process. The first successful Open also
// registers an os/signal shutdown hook mirroring
// cmd/nornicdb/main.go's signal.Notify/sigChan block, so SIGINT/SIGTERM
// closes the store before the process exits rather than leaving it in
// the "use after shutdown is undefined" state.
func Open(cfg *config.Config) (*Client, error) {
	processMu.Lock()
	defer processMu.Unlock()

	if processClient != nil {
		return processClient, nil
	}

	var engine kernel.Engine
	if cfg.Backend == "memory" {
		engine = kernel.NewMemoryEngine()
	} else {
		be, err := kernel.NewBadgerEngine(cfg.DBLocation)
		if err != nil {
			return nil, fmt.Errorf("client: opening store at %s: %w", cfg.DBLocation, err)
		}
		engine = be
	}

	store := graphstore.New(engine)
	if !cfg.BootstrapDisabled {
		if err := store.Bootstrap(); err != nil {
			engine.Close()
			return nil, fmt.Errorf("client: bootstrapping store: %w", err)
		}
	}
	if cfg.LatticeSeedFile != "" {
		seed, err := config.LoadLatticeSeed(cfg.LatticeSeedFile)
		if err != nil {
			engine.Close()
			return nil, err
		}
		if err := config.ApplyLatticeSeed(store, seed); err != nil {
			engine.Close()
			return nil, err
		}
	}

	c := New(store)
	if cfg.AuditLogPath != "" {
		logger, err := audit.NewLogger(audit.Config{Enabled: true, LogPath: cfg.AuditLogPath})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("client: opening audit log: %w", err)
		}
		c = c.WithAuditLogger(logger)
	}

	processClient = c
	processEngine = engine
	hookOnce.Do(registerShutdownHook)
	return processClient, nil
}

// registerShutdownHook traps SIGINT/SIGTERM and calls Close before the
// process exits, so a signal mid-write still closes the engine cleanly
// instead of abandoning it.
func registerShutdownHook() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = Close()
		os.Exit(0)
	}()
}

// Close closes the process-wide store opened by Open, if any. Idempotent:
// a second call is a no-op. Use after Close is undefined (spec.md §5).
func Close() error {
	processMu.Lock()
	defer processMu.Unlock()

	if processEngine == nil {
		return nil
	}
	err := processEngine.Close()
	processClient = nil
	processEngine = nil
	return err
}
