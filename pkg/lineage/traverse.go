// Package lineage implements C6: the lineage traversal engine. Traverse
// resolves a starting identifier, walks the provenance graph bounded by
// model.TraversalSettings, and returns a model.LineageDAG whose nodes have
// already been hydrated (pkg/factory) and filtered through the surrogate
// view (pkg/privilege) — per spec.md §4.6's five-step algorithm.
package lineage

import (
	"context"
	"fmt"

	"github.com/orneryd/plus/pkg/factory"
	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"github.com/orneryd/plus/pkg/privilege"
)

const relNPE = "NPE"

// Traverse implements spec.md §4.6's algorithm: resolve the start id,
// configure a bounded walk over the six provenance relationship types
// (plus NPE when settings.FollowNPIDs), hydrate and filter every visited
// node, enumerate and deduplicate incident edges/NPEs, and stop at n,
// maxDepth, or exhaustion.
func Traverse(ctx context.Context, store *graphstore.GraphStore, registry *privilege.Registry, start string, viewer *model.Actor, settings model.TraversalSettings) (*model.LineageDAG, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine := store.Engine()
	labels := store.NodeLabels(start)
	if labels == nil {
		return nil, fmt.Errorf("lineage: start %q: %w", start, kernel.ErrNotFound)
	}
	startIsObject := containsLabel(labels, "Provenance")

	dag := model.NewLineageDAG(start)

	if !startIsObject && !settings.FollowNPIDs {
		return npidOnlyResult(store, dag, start)
	}

	relTypes := append([]string{}, model.ProvenanceEdgeTypes...)
	if settings.FollowNPIDs {
		relTypes = append(relTypes, relNPE)
	}

	result, err := kernel.Traverse(engine, kernel.NodeID(start), kernel.TraversalOptions{
		RelTypes:     relTypes,
		Forward:      settings.Forward,
		Backward:     settings.Backward,
		MaxDepth:     settings.MaxDepth,
		MaxNodes:     settings.N,
		BreadthFirst: settings.BreadthFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("lineage: traverse %q: %w", start, err)
	}

	// visible tracks every node that survived hydrate+filter, independent
	// of IncludeNodes: edge endpoint resolution (step 4) needs to know a
	// node was visible even when the caller only wants edges, not nodes.
	visible := map[string]bool{}

	for _, node := range result.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !factory.EndpointIsPLUSObject(node) {
			continue
		}
		obj, err := factory.HydrateObject(engine, node)
		if err != nil {
			return nil, fmt.Errorf("lineage: hydrating %s: %w", node.ID, err)
		}
		filtered, err := registry.FilterForViewer(engine, obj, viewer)
		if err != nil {
			return nil, fmt.Errorf("lineage: filtering %s: %w", node.ID, err)
		}
		if filtered == nil {
			continue
		}
		visible[filtered.OID] = true
		if obj.Owner != nil {
			dag.AddActor(obj.Owner)
		}
		if settings.IncludeNodes {
			dag.AddNode(filtered)
		}
	}

	if settings.IncludeEdges || settings.IncludeNPEs {
		for _, edge := range result.Edges {
			if edge.Type == relNPE {
				if !settings.IncludeNPEs {
					continue
				}
				npe := factory.HydrateNPE(edge)
				var npid *model.NPID
				if !visible[npe.To] {
					npid = &model.NPID{NPID: npe.To}
				}
				dag.AddNPE(npe, npid)
				continue
			}
			if !settings.IncludeEdges {
				continue
			}
			if !visible[string(edge.StartNode)] && !visible[string(edge.EndNode)] {
				continue
			}
			// An edge with exactly one visible endpoint is kept as a
			// dangling edge: pkg/postprocess.TagDanglers needs it to
			// mark the surviving endpoint `more-available`, and
			// DrawInferredEdges needs it to find nodes separated only
			// by a redacted intermediate.
			dag.AddEdge(factory.HydrateEdge(edge))
		}
	}

	return dag, nil
}

func containsLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

// npidOnlyResult implements the edge case in spec.md §4.6: a starting NPID
// with followNPIDs=false yields only the NPID and its immediate NPE edges.
func npidOnlyResult(store *graphstore.GraphStore, dag *model.LineageDAG, start string) (*model.LineageDAG, error) {
	engine := store.Engine()
	incoming, err := engine.GetIncomingEdges(kernel.NodeID(start))
	if err != nil {
		return nil, fmt.Errorf("lineage: npid %q: %w", start, err)
	}
	for _, edge := range incoming {
		if edge.Type != relNPE {
			continue
		}
		dag.AddNPE(factory.HydrateNPE(edge), &model.NPID{NPID: start})
	}
	return dag, nil
}
