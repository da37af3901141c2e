package model

import "time"

// TraversalSettings configures a lineage traversal (pkg/lineage.Traverse),
// mirroring spec.md §4.6's settings table.
type TraversalSettings struct {
	// MaxDepth caps hops from the starting point; unbounded if <= 0.
	MaxDepth int

	// N caps the total number of nodes collected; unbounded if <= 0.
	N int

	// BreadthFirst selects BFS when true, DFS when false.
	BreadthFirst bool

	// Forward enables outgoing traversal, Backward incoming; both true
	// makes the walk undirected.
	Forward  bool
	Backward bool

	// IncludeNodes/IncludeEdges/IncludeNPEs select which element kinds
	// enter the result DAG.
	IncludeNodes bool
	IncludeEdges bool
	IncludeNPEs  bool

	// FollowNPIDs, when true, lets the walk step across NPE edges,
	// possibly reaching new PLUSObjects via shared NPIDs.
	FollowNPIDs bool
}

// DefaultTraversalSettings mirrors the common S1/S2 scenario shape: a
// single-directional, node-and-edge-inclusive, non-NPID-following walk.
func DefaultTraversalSettings() TraversalSettings {
	return TraversalSettings{
		N:            10,
		BreadthFirst: true,
		Forward:      true,
		IncludeNodes: true,
		IncludeEdges: true,
	}
}

// Fingerprint carries the timing/statistics annotation C7's Fingerprint
// pass stamps onto a completed LineageDAG.
type Fingerprint struct {
	NodeCount int
	EdgeCount int
	NPECount  int
	Elapsed   time.Duration
}

// WorkflowMember pairs a workflow-tagged PLUSEdge with its hydrated
// endpoints, in the shape getWorkflowMembers returns (spec.md §4.3,
// SPEC_FULL.md §3 supplement — most-recent-first ordering).
type WorkflowMember struct {
	Edge *PLUSEdge
	From *PLUSObject
	To   *PLUSObject
}

// ProvenanceCollection is the write-side container: an unordered bag of
// actors, objects, edges, and NPEs handed to store(collection).
type ProvenanceCollection struct {
	Actors  []*Actor
	Objects []*PLUSObject
	Edges   []*PLUSEdge
	NPEs    []*NPE
}

// LineageDAG is the read-side container: the result of a traversal, with
// a chosen focus node, a tag map for post-processing annotations (head,
// foot, more-available, taint-sources, ...), and a fingerprint.
//
// Endpoints are referenced by OID, not by pointer — in-memory side-tables
// keyed on OID, not direct object references, so that the provenance
// graph's natural cycles (a taint object marks nodes that also contribute
// upstream of it) never become Go reference cycles (spec.md §9).
type LineageDAG struct {
	Focus string

	nodesByOID map[string]*PLUSObject
	nodeOrder  []string

	edges []*PLUSEdge
	npes  []*NPE
	npids map[string]*NPID

	actorsByAID map[string]*Actor

	// Tags maps oid -> key -> value, e.g. tags["O1"]["head"] = true,
	// tags["O3"]["more-available"] = true.
	Tags map[string]map[string]any

	Fingerprint Fingerprint
}

// NewLineageDAG returns an empty, ready-to-populate DAG.
func NewLineageDAG(focus string) *LineageDAG {
	return &LineageDAG{
		Focus:       focus,
		nodesByOID:  map[string]*PLUSObject{},
		edges:       nil,
		npes:        nil,
		npids:       map[string]*NPID{},
		actorsByAID: map[string]*Actor{},
		Tags:        map[string]map[string]any{},
	}
}

// AddNode inserts o if not already present, preserving visit order.
func (d *LineageDAG) AddNode(o *PLUSObject) {
	if o == nil {
		return
	}
	if _, exists := d.nodesByOID[o.OID]; exists {
		return
	}
	d.nodesByOID[o.OID] = o
	d.nodeOrder = append(d.nodeOrder, o.OID)
}

// HasNode reports whether oid is already present in the DAG.
func (d *LineageDAG) HasNode(oid string) bool {
	_, ok := d.nodesByOID[oid]
	return ok
}

// Node looks up a collected node by OID.
func (d *LineageDAG) Node(oid string) (*PLUSObject, bool) {
	n, ok := d.nodesByOID[oid]
	return n, ok
}

// Nodes returns the collected nodes in visit order.
func (d *LineageDAG) Nodes() []*PLUSObject {
	out := make([]*PLUSObject, 0, len(d.nodeOrder))
	for _, oid := range d.nodeOrder {
		out = append(out, d.nodesByOID[oid])
	}
	return out
}

// AddEdge appends e, deduplicated by ID.
func (d *LineageDAG) AddEdge(e *PLUSEdge) {
	if e == nil {
		return
	}
	for _, existing := range d.edges {
		if existing.ID == e.ID {
			return
		}
	}
	d.edges = append(d.edges, e)
}

// Edges returns the collected edges.
func (d *LineageDAG) Edges() []*PLUSEdge { return d.edges }

// AddNPE appends an NPE, deduplicated by NPEID, and registers its NPID
// endpoint (if any) in the side-table.
func (d *LineageDAG) AddNPE(npe *NPE, npid *NPID) {
	if npe == nil {
		return
	}
	for _, existing := range d.npes {
		if existing.NPEID == npe.NPEID {
			return
		}
	}
	d.npes = append(d.npes, npe)
	if npid != nil {
		d.npids[npid.NPID] = npid
	}
}

// NPEs returns the collected non-provenance edges.
func (d *LineageDAG) NPEs() []*NPE { return d.npes }

// NPIDs returns the collected non-provenance leaf nodes.
func (d *LineageDAG) NPIDs() []*NPID {
	out := make([]*NPID, 0, len(d.npids))
	for _, n := range d.npids {
		out = append(out, n)
	}
	return out
}

// AddActor registers an actor referenced by the DAG (owners, taint
// creators), deduplicated by AID.
func (d *LineageDAG) AddActor(a *Actor) {
	if a == nil {
		return
	}
	d.actorsByAID[a.AID] = a
}

// Actors returns the registered actors.
func (d *LineageDAG) Actors() []*Actor {
	out := make([]*Actor, 0, len(d.actorsByAID))
	for _, a := range d.actorsByAID {
		out = append(out, a)
	}
	return out
}

// Tag sets tags[oid][key] = value, creating the inner map on first use.
func (d *LineageDAG) Tag(oid, key string, value any) {
	if d.Tags[oid] == nil {
		d.Tags[oid] = map[string]any{}
	}
	d.Tags[oid][key] = value
}

// TagValue reads tags[oid][key].
func (d *LineageDAG) TagValue(oid, key string) (any, bool) {
	inner, ok := d.Tags[oid]
	if !ok {
		return nil, false
	}
	v, ok := inner[key]
	return v, ok
}

// NodeCount, EdgeCount, NPECount report the current collected sizes, used
// by the Fingerprint pass.
func (d *LineageDAG) NodeCount() int { return len(d.nodeOrder) }
func (d *LineageDAG) EdgeCount() int { return len(d.edges) }
func (d *LineageDAG) NPECount() int  { return len(d.npes) }
