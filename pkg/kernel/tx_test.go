package kernel

import "testing"

func TestBeginTx_MemoryEngine(t *testing.T) {
	engine := NewMemoryEngine()
	tx, err := BeginTx(engine, false)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.CreateNode(&Node{ID: "n1", Labels: []string{"Thing"}}); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := engine.GetNode("n1"); err != nil {
		t.Fatalf("expected node to be visible after commit: %v", err)
	}
}

func TestBeginTx_BadgerEngine(t *testing.T) {
	engine, cleanup := setupTestBadgerEngine(t)
	defer cleanup()

	tx, err := BeginTx(engine, false)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.CreateNode(&Node{ID: "n1", Labels: []string{"Thing"}}); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := engine.GetNode("n1"); err != nil {
		t.Fatalf("expected node to be visible after commit: %v", err)
	}
}

func TestBeginTx_ReadOnlySkipsCommitEvenOnFailure(t *testing.T) {
	engine := NewMemoryEngine()
	tx, err := BeginTx(engine, true)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("read-only commit should never fail: %v", err)
	}
}
