// Package postprocess implements C7: the five DAG post-processing passes
// that run, in order, after a lineage traversal collects a raw
// model.LineageDAG (spec.md §4.7).
package postprocess

import (
	"sort"
	"time"

	"github.com/orneryd/plus/pkg/model"
)

// Run executes all five passes in spec order and stamps a Fingerprint.
func Run(dag *model.LineageDAG) {
	start := time.Now()

	VoteSurrogates(dag)
	PropagateTaint(dag)
	DrawInferredEdges(dag)
	TagHeadsAndFoots(dag)
	TagDanglers(dag)

	Fingerprint(dag, start)
}

// VoteSurrogates tags every OID that is an endpoint of a DAG edge with
// "incidentEdgeVotes", the number of the DAG's edges incident to it. It
// does not choose between competing surrogate views of one OID and
// leaves the node table unchanged; model.LineageDAG.AddNode keeps the
// first node inserted for an OID, so a DAG holds one view per OID.
func VoteSurrogates(dag *model.LineageDAG) {
	votes := map[string]map[string]int{}
	for _, e := range dag.Edges() {
		for _, oid := range []string{e.From, e.To} {
			if votes[oid] == nil {
				votes[oid] = map[string]int{}
			}
			votes[oid][e.ID]++
		}
	}
	// Only the per-OID total of incident edges is kept, as a tag; the
	// per-edge breakdown is discarded.
	for oid, byEdge := range votes {
		total := 0
		for _, c := range byEdge {
			total += c
		}
		dag.Tag(oid, "incidentEdgeVotes", total)
	}
}

// PropagateTaint walks downstream from every taint node already in the
// DAG along provenance edges, tagging every reachable descendant with
// `tainted=true` and the set of taint-source OIDs it descends from, so
// each derived object knows its taint ancestry.
func PropagateTaint(dag *model.LineageDAG) {
	var taintSources []string
	for _, n := range dag.Nodes() {
		if sub, ok := n.Kind.Subtype(); ok && sub == model.DataTaint {
			taintSources = append(taintSources, n.OID)
		}
	}
	if len(taintSources) == 0 {
		return
	}

	adjacency := map[string][]string{}
	for _, e := range dag.Edges() {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	for _, source := range taintSources {
		visited := map[string]bool{source: true}
		frontier := []string{source}
		for len(frontier) > 0 {
			current := frontier[0]
			frontier = frontier[1:]
			for _, next := range adjacency[current] {
				if visited[next] {
					continue
				}
				visited[next] = true
				frontier = append(frontier, next)

				dag.Tag(next, "tainted", true)
				sources, _ := dag.TagValue(next, "taintSources")
				set, _ := sources.([]string)
				set = appendUnique(set, source)
				dag.Tag(next, "taintSources", set)
			}
		}
	}
}

func appendUnique(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

// DrawInferredEdges finds pairs of visible nodes separated only by a
// redacted intermediate: two dangling edges (pkg/lineage.Traverse keeps
// edges with one visible endpoint for exactly this purpose) that name the
// same missing OID on opposite sides. For each such pair, a direct
// `unspecified` edge is drawn between the two visible endpoints.
func DrawInferredEdges(dag *model.LineageDAG) {
	present := map[string]bool{}
	for _, n := range dag.Nodes() {
		present[n.OID] = true
	}

	missingToVisible := map[string][]string{}
	for _, e := range dag.Edges() {
		if present[e.From] && !present[e.To] {
			missingToVisible[e.To] = append(missingToVisible[e.To], e.From)
		}
		if present[e.To] && !present[e.From] {
			missingToVisible[e.From] = append(missingToVisible[e.From], e.To)
		}
	}

	for missing, visibleEndpoints := range missingToVisible {
		if len(visibleEndpoints) < 2 {
			continue
		}
		sort.Strings(visibleEndpoints)
		for i := 0; i < len(visibleEndpoints); i++ {
			for j := i + 1; j < len(visibleEndpoints); j++ {
				from, to := visibleEndpoints[i], visibleEndpoints[j]
				dag.AddEdge(&model.PLUSEdge{
					ID:   "inferred:" + from + "->" + to + ":" + missing,
					From: from, To: to,
					Type: model.EdgeUnspecified,
				})
			}
		}
	}
}

// TagHeadsAndFoots tags nodes with no inbound provenance edges in the DAG
// as `head`, and nodes with no outbound provenance edges as `foot`.
func TagHeadsAndFoots(dag *model.LineageDAG) {
	hasInbound := map[string]bool{}
	hasOutbound := map[string]bool{}
	for _, e := range dag.Edges() {
		hasOutbound[e.From] = true
		hasInbound[e.To] = true
	}
	for _, n := range dag.Nodes() {
		if !hasInbound[n.OID] {
			dag.Tag(n.OID, "head", true)
		}
		if !hasOutbound[n.OID] {
			dag.Tag(n.OID, "foot", true)
		}
	}
}

// TagDanglers enumerates edges whose endpoint is missing from the DAG's
// node table and tags the surviving endpoint `more-available=true`.
func TagDanglers(dag *model.LineageDAG) {
	present := map[string]bool{}
	for _, n := range dag.Nodes() {
		present[n.OID] = true
	}
	for _, e := range dag.Edges() {
		if present[e.From] && !present[e.To] {
			dag.Tag(e.From, "more-available", true)
		}
		if present[e.To] && !present[e.From] {
			dag.Tag(e.To, "more-available", true)
		}
	}
}

// Fingerprint stamps dag with a timing/statistics annotation, measuring
// elapsed wall-clock time since start.
func Fingerprint(dag *model.LineageDAG, start time.Time) {
	dag.Fingerprint = model.Fingerprint{
		NodeCount: dag.NodeCount(),
		EdgeCount: dag.EdgeCount(),
		NPECount:  dag.NPECount(),
		Elapsed:   time.Since(start),
	}
}
