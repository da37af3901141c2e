// Package audit provides an append-only, newline-delimited JSON audit
// trail for admin-grade operations: taints, taint removal, object
// deletion, and redacted/unauthorized views. It is a trimmed adaptation
// of the teacher's compliance audit logger — the structured,
// append-only event log survives; the GDPR/HIPAA/SOC2/FISMA
// compliance-report generation and breach-notification machinery does
// not, since nothing in this store consumes a compliance report.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType classifies an audit Event.
type EventType string

const (
	EventTaint         EventType = "TAINT"
	EventRemoveTaints  EventType = "REMOVE_TAINTS"
	EventDelete        EventType = "DELETE"
	EventAccessDenied  EventType = "ACCESS_DENIED"
	EventSecurityAlert EventType = "SECURITY_ALERT"
)

// Event is an immutable audit log entry.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	ActorID   string            `json:"actor_id,omitempty"`
	Actor     string            `json:"actor,omitempty"`
	Resource  string            `json:"resource,omitempty"`
	Success   bool              `json:"success"`
	Reason    string            `json:"reason,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Config holds audit logger configuration.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool
	// LogPath is the path to the audit log file. Empty means stdout.
	LogPath string
	// SyncWrites forces fsync after each write.
	SyncWrites bool
}

// DefaultConfig returns a logger writing to stdout without fsync.
func DefaultConfig() Config {
	return Config{Enabled: true, LogPath: "", SyncWrites: false}
}

// Logger appends audit events as newline-delimited JSON.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	file     *os.File
	config   Config
	sequence uint64
	closed   bool

	alertCallback func(Event)
}

// NewLogger opens config.LogPath in append mode, or writes to stdout if
// LogPath is empty.
func NewLogger(config Config) (*Logger, error) {
	if !config.Enabled {
		return &Logger{config: config}, nil
	}
	if config.LogPath == "" {
		return &Logger{writer: os.Stdout, config: config}, nil
	}

	dir := filepath.Dir(config.LogPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("audit: creating log directory: %w", err)
	}
	file, err := os.OpenFile(config.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("audit: opening log file: %w", err)
	}
	return &Logger{writer: file, file: file, config: config}, nil
}

// NewLoggerWithWriter creates a logger with a custom writer, for tests.
func NewLoggerWithWriter(writer io.Writer, config Config) *Logger {
	return &Logger{writer: writer, config: config}
}

// SetAlertCallback installs a callback invoked after every successfully
// logged EventSecurityAlert/EventAccessDenied event.
func (l *Logger) SetAlertCallback(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alertCallback = fn
}

// Log appends event, stamping Timestamp/ID if unset.
func (l *Logger) Log(event Event) error {
	if !l.config.Enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("audit: logger is closed")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		l.sequence++
		event.ID = fmt.Sprintf("audit-%d-%d", event.Timestamp.UnixNano(), l.sequence)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: marshaling event: %w", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("audit: writing event: %w", err)
	}
	if l.config.SyncWrites && l.file != nil {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("audit: syncing log: %w", err)
		}
	}

	if l.alertCallback != nil && (event.Type == EventSecurityAlert || event.Type == EventAccessDenied) {
		l.alertCallback(event)
	}
	return nil
}

// LogTaint records a taint-creation event.
func (l *Logger) LogTaint(actorID, actor, objectOID string, success bool, reason string) error {
	return l.Log(Event{Type: EventTaint, ActorID: actorID, Actor: actor, Resource: objectOID, Success: success, Reason: reason})
}

// LogRemoveTaints records a taint-removal event.
func (l *Logger) LogRemoveTaints(actorID, actor, objectOID string, removed int, success bool, reason string) error {
	return l.Log(Event{
		Type: EventRemoveTaints, ActorID: actorID, Actor: actor, Resource: objectOID, Success: success, Reason: reason,
		Metadata: map[string]string{"removed": fmt.Sprintf("%d", removed)},
	})
}

// LogDelete records an object-deletion event.
func (l *Logger) LogDelete(actorID, actor, objectOID string, success bool, reason string) error {
	return l.Log(Event{Type: EventDelete, ActorID: actorID, Actor: actor, Resource: objectOID, Success: success, Reason: reason})
}

// LogAccessDenied records a privilege-lattice redaction: a viewer
// requested objectOID but pkg/privilege.FilterForViewer withheld it.
func (l *Logger) LogAccessDenied(actorID, actor, objectOID string) error {
	return l.Log(Event{Type: EventAccessDenied, ActorID: actorID, Actor: actor, Resource: objectOID, Success: false, Reason: "viewer does not dominate object privilege"})
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
