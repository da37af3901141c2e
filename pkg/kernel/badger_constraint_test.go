// Comprehensive UNIQUE constraint enforcement tests against BadgerEngine.
package kernel

import (
	"testing"
)

func TestBadgerTransaction_FullScanUniqueConstraint(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	engine.schema.AddConstraint(Constraint{
		Name:       "unique_email",
		Type:       ConstraintUnique,
		Label:      "User",
		Properties: []string{"email"},
	})

	tx1, err := engine.BeginTransaction(false)
	if err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}

	err = tx1.CreateNode(&Node{
		ID:     "user-1",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "alice@example.com",
			"name":  "Alice",
		},
	})
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	if err := tx1.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tx2, err := engine.BeginTransaction(false)
	if err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}

	err = tx2.CreateNode(&Node{
		ID:     "user-2",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "alice@example.com",
			"name":  "Alice Clone",
		},
	})

	if err == nil {
		t.Fatal("Expected constraint violation error, got nil")
	}
	if _, ok := err.(*ConstraintViolationError); !ok {
		t.Errorf("Expected ConstraintViolationError, got %T: %v", err, err)
	}

	tx2.Rollback()

	tx3, _ := engine.BeginTransaction(false)
	err = tx3.CreateNode(&Node{
		ID:     "user-3",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "bob@example.com",
			"name":  "Bob",
		},
	})
	if err != nil {
		t.Errorf("Should allow different email: %v", err)
	}
	tx3.Commit()
}

func TestBadgerEngine_ValidateConstraintOnCreation(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	tx, _ := engine.BeginTransaction(false)
	tx.CreateNode(&Node{
		ID:     "user-1",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "duplicate@example.com",
		},
	})
	tx.CreateNode(&Node{
		ID:     "user-2",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "duplicate@example.com",
		},
	})
	tx.Commit()

	err := engine.ValidateConstraintOnCreation(Constraint{
		Name:       "unique_email",
		Type:       ConstraintUnique,
		Label:      "User",
		Properties: []string{"email"},
	})

	if err == nil {
		t.Fatal("Expected validation error for existing duplicates, got nil")
	}

	constraintErr, ok := err.(*ConstraintViolationError)
	if !ok {
		t.Errorf("Expected ConstraintViolationError, got %T", err)
	}
	if constraintErr != nil && constraintErr.Type != ConstraintUnique {
		t.Errorf("Expected UNIQUE constraint error, got %s", constraintErr.Type)
	}
}

func TestBadgerTransaction_UniqueConstraintWithinTransaction(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	engine.schema.AddConstraint(Constraint{
		Name:       "unique_id",
		Type:       ConstraintUnique,
		Label:      "Node",
		Properties: []string{"id"},
	})

	tx, _ := engine.BeginTransaction(false)

	tx.CreateNode(&Node{
		ID:     "node-1",
		Labels: []string{"Node"},
		Properties: map[string]interface{}{
			"id": "unique-123",
		},
	})

	err := tx.CreateNode(&Node{
		ID:     "node-2",
		Labels: []string{"Node"},
		Properties: map[string]interface{}{
			"id": "unique-123",
		},
	})

	if err == nil {
		t.Fatal("Expected constraint violation within transaction, got nil")
	}

	tx.Rollback()
}

func TestBadgerTransaction_NullValuesAllowed(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	engine.schema.AddConstraint(Constraint{
		Name:       "unique_optional",
		Type:       ConstraintUnique,
		Label:      "Node",
		Properties: []string{"optionalField"},
	})

	tx, _ := engine.BeginTransaction(false)

	tx.CreateNode(&Node{
		ID:         "node-1",
		Labels:     []string{"Node"},
		Properties: map[string]interface{}{},
	})

	err := tx.CreateNode(&Node{
		ID:         "node-2",
		Labels:     []string{"Node"},
		Properties: map[string]interface{}{},
	})

	if err != nil {
		t.Errorf("NULL values should not violate UNIQUE: %v", err)
	}

	tx.Commit()
}

func TestBadgerTransaction_MultipleConstraints(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	engine.schema.AddConstraint(Constraint{
		Name:       "unique_email",
		Type:       ConstraintUnique,
		Label:      "User",
		Properties: []string{"email"},
	})

	tx, _ := engine.BeginTransaction(false)

	err := tx.CreateNode(&Node{
		ID:     "user-1",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "alice@example.com",
		},
	})
	if err != nil {
		t.Fatalf("First node should succeed: %v", err)
	}

	err = tx.CreateNode(&Node{
		ID:     "user-2",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "alice@example.com",
		},
	})
	if err == nil {
		t.Fatal("Expected UNIQUE constraint violation")
	}

	tx.Rollback()

	tx2, _ := engine.BeginTransaction(false)
	err = tx2.CreateNode(&Node{
		ID:     "user-3",
		Labels: []string{"User"},
		Properties: map[string]interface{}{
			"email": "bob@example.com",
		},
	})
	if err != nil {
		t.Errorf("Should satisfy all constraints: %v", err)
	}
	tx2.Commit()
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		a        interface{}
		b        interface{}
		expected bool
	}{
		{"int equal", 42, 42, true},
		{"int not equal", 42, 43, false},
		{"int and int64 equal", 42, int64(42), true},
		{"int and float64 equal", 42, 42.0, true},
		{"string equal", "hello", "hello", true},
		{"string not equal", "hello", "world", false},
		{"bool equal", true, true, true},
		{"bool not equal", true, false, false},
		{"mixed types", 42, "42", false},
		{"float precision", 3.14, 3.14, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compareValues(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("compareValues(%v, %v) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestBadgerTransaction_ConstraintAcrossCommits(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	engine.schema.AddConstraint(Constraint{
		Name:       "unique_username",
		Type:       ConstraintUnique,
		Label:      "Account",
		Properties: []string{"username"},
	})

	tx1, _ := engine.BeginTransaction(false)
	tx1.CreateNode(&Node{
		ID:     "account-1",
		Labels: []string{"Account"},
		Properties: map[string]interface{}{
			"username": "alice",
		},
	})
	tx1.Commit()

	tx2, _ := engine.BeginTransaction(false)
	err := tx2.CreateNode(&Node{
		ID:     "account-2",
		Labels: []string{"Account"},
		Properties: map[string]interface{}{
			"username": "alice",
		},
	})
	if err == nil {
		t.Fatal("Expected UNIQUE constraint violation across commits")
	}
	tx2.Rollback()

	tx3, _ := engine.BeginTransaction(false)
	err = tx3.CreateNode(&Node{
		ID:     "account-3",
		Labels: []string{"Account"},
		Properties: map[string]interface{}{
			"username": "bob",
		},
	})
	if err != nil {
		t.Errorf("Different username should succeed: %v", err)
	}
	tx3.Commit()
}

// setupTestBadgerEngine creates a temporary BadgerDB for testing, cleaned
// up automatically via t.TempDir().
func setupTestBadgerEngine(t *testing.T) (*BadgerEngine, func()) {
	dir := t.TempDir()

	engine, err := NewBadgerEngine(dir)
	if err != nil {
		t.Fatalf("Failed to create BadgerEngine: %v", err)
	}

	return engine, func() { engine.Close() }
}
