// Bounded-depth traversal and pattern-query primitives built on top of the
// Engine interface's CRUD/index methods. Neither primitive is itself part
// of the Engine interface: both MemoryEngine and BadgerEngine already
// expose everything these functions need (GetOutgoingEdges, GetIncomingEdges,
// GetNodesByLabel, ...), so a bounded BFS and a small predicate matcher can
// be written once against the interface rather than duplicated per engine.
package kernel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TraversalOptions configures Traverse.
type TraversalOptions struct {
	// RelTypes restricts traversal to these relationship types. Empty means
	// all types are eligible.
	RelTypes []string

	// Forward enables stepping across outgoing edges, Backward across
	// incoming edges. Both true makes the walk undirected.
	Forward  bool
	Backward bool

	// MaxDepth caps hops from start; <= 0 is unbounded.
	MaxDepth int

	// MaxNodes caps the number of distinct nodes visited; <= 0 is unbounded.
	MaxNodes int

	// BreadthFirst selects BFS over DFS frontier order.
	BreadthFirst bool
}

// TraversalResult is the raw node/edge set a bounded walk collected, keyed
// by hop distance from the start node. Higher layers (pkg/lineage) hydrate
// and filter these into a LineageDAG.
type TraversalResult struct {
	Nodes []*Node
	Edges []*Edge
	Depth map[NodeID]int
}

// Traverse performs a bounded BFS/DFS walk from start over the relationship
// types and direction named in opts, stopping at MaxDepth hops or MaxNodes
// visited nodes, whichever comes first.
func Traverse(engine Engine, start NodeID, opts TraversalOptions) (*TraversalResult, error) {
	if _, err := engine.GetNode(start); err != nil {
		return nil, fmt.Errorf("traverse: start node %q: %w", start, err)
	}

	result := &TraversalResult{Depth: map[NodeID]int{start: 0}}
	visitedEdges := make(map[EdgeID]bool)
	visited := map[NodeID]bool{start: true}
	frontier := []NodeID{start}

	typeAllowed := func(t string) bool {
		if len(opts.RelTypes) == 0 {
			return true
		}
		for _, want := range opts.RelTypes {
			if want == t {
				return true
			}
		}
		return false
	}

	for len(frontier) > 0 {
		if opts.MaxNodes > 0 && len(visited) >= opts.MaxNodes {
			break
		}

		var current NodeID
		if opts.BreadthFirst {
			current, frontier = frontier[0], frontier[1:]
		} else {
			current, frontier = frontier[len(frontier)-1], frontier[:len(frontier)-1]
		}

		depth := result.Depth[current]
		node, err := engine.GetNode(current)
		if err != nil {
			continue
		}
		result.Nodes = append(result.Nodes, node)

		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			continue
		}

		var edges []*Edge
		if opts.Forward {
			out, err := engine.GetOutgoingEdges(current)
			if err == nil {
				edges = append(edges, out...)
			}
		}
		if opts.Backward {
			in, err := engine.GetIncomingEdges(current)
			if err == nil {
				edges = append(edges, in...)
			}
		}

		for _, edge := range edges {
			if !typeAllowed(edge.Type) {
				continue
			}
			if !visitedEdges[edge.ID] {
				visitedEdges[edge.ID] = true
				result.Edges = append(result.Edges, edge)
			}

			var next NodeID
			if edge.StartNode == current {
				next = edge.EndNode
			} else {
				next = edge.StartNode
			}
			if visited[next] {
				continue
			}
			if opts.MaxNodes > 0 && len(visited) >= opts.MaxNodes {
				continue
			}
			visited[next] = true
			result.Depth[next] = depth + 1
			frontier = append(frontier, next)
		}
	}

	return result, nil
}

// QueryPattern is the parsed form of a pattern string:
//
//	LABEL(prop=value, ...) [ORDER BY prop [DESC]] [LIMIT n]
//
// e.g. `Provenance(subtype=taint) ORDER BY created DESC LIMIT 50`
type QueryPattern struct {
	Label      string
	Predicates map[string]string
	OrderBy    string
	Descending bool
	Limit      int
}

// ParseQuery parses a pattern-language string into a QueryPattern. It is a
// small recursive-descent parser over a deliberately narrow grammar: a label
// name, an optional parenthesized comma-separated predicate list, an
// optional ORDER BY clause, and an optional LIMIT clause. It is not a
// general expression language — no boolean operators, no nested patterns.
func ParseQuery(pattern string) (*QueryPattern, error) {
	s := strings.TrimSpace(pattern)
	if s == "" {
		return nil, fmt.Errorf("empty query pattern")
	}

	qp := &QueryPattern{Predicates: map[string]string{}}

	parenIdx := strings.IndexByte(s, '(')
	if parenIdx < 0 {
		return nil, fmt.Errorf("malformed pattern %q: expected LABEL(...)", pattern)
	}
	qp.Label = strings.TrimSpace(s[:parenIdx])
	if qp.Label == "" {
		return nil, fmt.Errorf("malformed pattern %q: missing label", pattern)
	}

	closeIdx := strings.IndexByte(s[parenIdx:], ')')
	if closeIdx < 0 {
		return nil, fmt.Errorf("malformed pattern %q: unterminated predicate list", pattern)
	}
	closeIdx += parenIdx

	predicateBody := strings.TrimSpace(s[parenIdx+1 : closeIdx])
	if predicateBody != "" {
		for _, clause := range strings.Split(predicateBody, ",") {
			kv := strings.SplitN(clause, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("malformed predicate %q in pattern %q", clause, pattern)
			}
			key := strings.TrimSpace(kv[0])
			val := strings.Trim(strings.TrimSpace(kv[1]), `"'`)
			if key == "" {
				return nil, fmt.Errorf("malformed predicate %q in pattern %q", clause, pattern)
			}
			qp.Predicates[key] = val
		}
	}

	rest := strings.TrimSpace(s[closeIdx+1:])
	upperRest := strings.ToUpper(rest)

	if idx := strings.Index(upperRest, "ORDER BY"); idx >= 0 {
		tail := strings.TrimSpace(rest[idx+len("ORDER BY"):])
		limitIdx := strings.Index(strings.ToUpper(tail), "LIMIT")
		orderClause := tail
		if limitIdx >= 0 {
			orderClause = strings.TrimSpace(tail[:limitIdx])
			rest = tail[limitIdx:]
			upperRest = strings.ToUpper(rest)
		} else {
			rest = ""
			upperRest = ""
		}
		fields := strings.Fields(orderClause)
		if len(fields) == 0 {
			return nil, fmt.Errorf("malformed ORDER BY clause in pattern %q", pattern)
		}
		qp.OrderBy = fields[0]
		if len(fields) > 1 && strings.EqualFold(fields[1], "DESC") {
			qp.Descending = true
		}
	}

	if idx := strings.Index(upperRest, "LIMIT"); idx >= 0 {
		numStr := strings.TrimSpace(rest[idx+len("LIMIT"):])
		n, err := strconv.Atoi(numStr)
		if err != nil {
			return nil, fmt.Errorf("malformed LIMIT clause in pattern %q: %w", pattern, err)
		}
		qp.Limit = n
	}

	return qp, nil
}

// defaultQueryLimit caps unbounded queries per spec: the text-query
// interface is limited to 500 results by default.
const defaultQueryLimit = 500

// Query evaluates a pattern string against engine and returns matching
// nodes, applying predicate filtering, optional ordering, and a limit
// (clamped to defaultQueryLimit when the pattern specifies none or a
// non-positive value).
func Query(engine Engine, pattern string) ([]*Node, error) {
	qp, err := ParseQuery(pattern)
	if err != nil {
		return nil, err
	}

	candidates, err := engine.GetNodesByLabel(qp.Label)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	matches := make([]*Node, 0, len(candidates))
	for _, node := range candidates {
		if nodeMatchesPredicates(node, qp.Predicates) {
			matches = append(matches, node)
		}
	}

	if qp.OrderBy != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			less := compareOrderable(matches[i].Properties[qp.OrderBy], matches[j].Properties[qp.OrderBy])
			if qp.Descending {
				return !less
			}
			return less
		})
	}

	limit := qp.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > defaultQueryLimit {
		limit = defaultQueryLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func nodeMatchesPredicates(node *Node, predicates map[string]string) bool {
	for key, want := range predicates {
		got, ok := node.Properties[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

// compareOrderable reports whether a sorts before b, comparing as float64
// (via toOrderableFloat) when both are numeric and otherwise comparing
// their %v string forms.
func compareOrderable(a, b any) bool {
	if af, aok := toOrderableFloat(a); aok {
		if bf, bok := toOrderableFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func toOrderableFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
