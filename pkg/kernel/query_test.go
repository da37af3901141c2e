// Traverse and Query primitive tests, run against MemoryEngine.
package kernel

import "testing"

func buildLineChain(t *testing.T) *MemoryEngine {
	t.Helper()
	engine := NewMemoryEngine()

	nodes := []*Node{
		{ID: "O1", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "O1", "name": "first", "created": int64(1)}},
		{ID: "O2", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "O2", "name": "second", "created": int64(2)}},
		{ID: "O3", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "O3", "name": "third", "created": int64(3)}},
	}
	for _, n := range nodes {
		if err := engine.CreateNode(n); err != nil {
			t.Fatalf("CreateNode(%s) failed: %v", n.ID, err)
		}
	}

	edges := []*Edge{
		{ID: "e1", StartNode: "O1", EndNode: "O2", Type: "input-to"},
		{ID: "e2", StartNode: "O2", EndNode: "O3", Type: "generated"},
	}
	for _, e := range edges {
		if err := engine.CreateEdge(e); err != nil {
			t.Fatalf("CreateEdge(%s) failed: %v", e.ID, err)
		}
	}

	return engine
}

func TestTraverse_ForwardBoundsByDepth(t *testing.T) {
	engine := buildLineChain(t)

	result, err := Traverse(engine, "O1", TraversalOptions{
		Forward:      true,
		BreadthFirst: true,
		MaxDepth:     1,
	})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if len(result.Nodes) != 2 {
		t.Fatalf("expected 2 nodes within depth 1, got %d", len(result.Nodes))
	}
	if result.Depth["O3"] != 0 {
		t.Errorf("O3 should not have been reached at maxDepth=1")
	}
}

func TestTraverse_BackwardFromTail(t *testing.T) {
	engine := buildLineChain(t)

	result, err := Traverse(engine, "O3", TraversalOptions{
		Backward:     true,
		BreadthFirst: true,
	})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if len(result.Nodes) != 3 {
		t.Fatalf("expected all 3 nodes reachable backward from O3, got %d", len(result.Nodes))
	}
	if result.Depth["O1"] != 2 {
		t.Errorf("expected O1 at depth 2, got %d", result.Depth["O1"])
	}
}

func TestTraverse_MaxNodesCap(t *testing.T) {
	engine := buildLineChain(t)

	result, err := Traverse(engine, "O1", TraversalOptions{
		Forward:      true,
		BreadthFirst: true,
		MaxNodes:     2,
	})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(result.Nodes) > 2 {
		t.Fatalf("expected at most 2 nodes, got %d", len(result.Nodes))
	}
}

func TestTraverse_NotFoundStart(t *testing.T) {
	engine := NewMemoryEngine()
	if _, err := Traverse(engine, "missing", TraversalOptions{Forward: true}); err == nil {
		t.Fatal("expected error for nonexistent start node")
	}
}

func TestParseQuery_LabelPredicatesOrderLimit(t *testing.T) {
	qp, err := ParseQuery(`Provenance(subtype=taint, name=foo) ORDER BY created DESC LIMIT 10`)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if qp.Label != "Provenance" {
		t.Errorf("expected label Provenance, got %q", qp.Label)
	}
	if qp.Predicates["subtype"] != "taint" || qp.Predicates["name"] != "foo" {
		t.Errorf("unexpected predicates: %+v", qp.Predicates)
	}
	if qp.OrderBy != "created" || !qp.Descending {
		t.Errorf("expected ORDER BY created DESC, got %q desc=%v", qp.OrderBy, qp.Descending)
	}
	if qp.Limit != 10 {
		t.Errorf("expected limit 10, got %d", qp.Limit)
	}
}

func TestParseQuery_BareLabel(t *testing.T) {
	qp, err := ParseQuery(`Provenance()`)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if qp.Label != "Provenance" || len(qp.Predicates) != 0 {
		t.Errorf("unexpected parse result: %+v", qp)
	}
}

func TestParseQuery_Malformed(t *testing.T) {
	if _, err := ParseQuery(``); err == nil {
		t.Fatal("expected error for empty pattern")
	}
	if _, err := ParseQuery(`Provenance`); err == nil {
		t.Fatal("expected error for missing predicate list")
	}
}

func TestQuery_FiltersOrdersAndLimits(t *testing.T) {
	engine := buildLineChain(t)

	matches, err := Query(engine, `Provenance() ORDER BY created DESC LIMIT 2`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "O3" || matches[1].ID != "O2" {
		t.Errorf("expected descending order by created, got %v, %v", matches[0].ID, matches[1].ID)
	}
}

func TestQuery_PredicateFilter(t *testing.T) {
	engine := buildLineChain(t)

	matches, err := Query(engine, `Provenance(name=second)`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "O2" {
		t.Fatalf("expected single match O2, got %+v", matches)
	}
}

func TestQuery_DefaultLimitClamp(t *testing.T) {
	engine := buildLineChain(t)

	matches, err := Query(engine, `Provenance()`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected all 3 nodes under default limit, got %d", len(matches))
	}
}
