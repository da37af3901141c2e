// Package client implements C8: the facade exposed to callers outside
// this module. Report, GetGraph, Latest, Search, ListWorkflows,
// GetSingleNode, Taint, RemoveTaints and Query take the calling actor;
// Exists, GetActors, GetWorkflowMembers, ActorExists, ActorByName,
// CreateActor, Authenticate and Dominates take none. Errors are the typed
// errors in errors.go (spec.md §7), except that CreateActor and
// Authenticate return pkg/identity's errors unchanged.
package client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/orneryd/plus/pkg/audit"
	"github.com/orneryd/plus/pkg/codec"
	"github.com/orneryd/plus/pkg/factory"
	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/identity"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/lineage"
	"github.com/orneryd/plus/pkg/model"
	"github.com/orneryd/plus/pkg/postprocess"
	"github.com/orneryd/plus/pkg/privilege"
)

const defaultSearchLimit = 100

// Client is the C8 facade wrapping a bootstrapped GraphStore and the
// surrogate-policy registry used by every read-path operation.
type Client struct {
	store    *graphstore.GraphStore
	registry *privilege.Registry
	audit    *audit.Logger
}

// New wraps store with a fresh privilege.NewRegistry() holding the
// default surrogate policies, and a disabled audit logger. The Client
// offers no way to supply a different registry or register further
// policies, so the policy set is fixed for the Client's lifetime.
func New(store *graphstore.GraphStore) *Client {
	logger, _ := audit.NewLogger(audit.Config{Enabled: false})
	return &Client{store: store, registry: privilege.NewRegistry(), audit: logger}
}

// WithAuditLogger attaches logger to record taint and removeTaints events
// and GetSingleNode's redacted-view (access-denied) events. Returns c for
// chaining.
func (c *Client) WithAuditLogger(logger *audit.Logger) *Client {
	c.audit = logger
	return c
}

// Report persists collection, wrapping any dangling-edge or constraint
// failure in the facade's typed-error vocabulary.
func (c *Client) Report(viewer *model.Actor, collection *model.ProvenanceCollection) (int, error) {
	if collection == nil {
		return 0, &InvalidArgumentError{Argument: "collection", Reason: "must not be nil"}
	}
	count, err := c.store.StoreCollection(collection)
	if err != nil {
		return 0, classifyErr("report", err)
	}
	return count, nil
}

// GetGraph runs a lineage traversal from oid under settings, post-
// processes the result (C7), and returns the finished DAG.
func (c *Client) GetGraph(ctx context.Context, viewer *model.Actor, oid string, settings model.TraversalSettings) (*model.LineageDAG, error) {
	if oid == "" {
		return nil, &InvalidArgumentError{Argument: "oid", Reason: "must not be empty"}
	}
	dag, err := lineage.Traverse(ctx, c.store, c.registry, oid, viewer, settings)
	if err != nil {
		return nil, classifyErr("getGraph", err)
	}
	postprocess.Run(dag)
	return dag, nil
}

// Exists reports whether id resolves to any node in the store.
func (c *Client) Exists(id string) bool {
	return c.store.Exists(id)
}

// Latest returns up to max most-recently-created PLUSObjects, newest
// first.
func (c *Client) Latest(viewer *model.Actor, max int) ([]*model.PLUSObject, error) {
	nodes, err := c.store.Engine().GetNodesByLabel(labelProvenance)
	if err != nil {
		return nil, classifyErr("latest", err)
	}
	created := func(n *kernel.Node) int64 {
		v, _ := codec.Decode(n.Properties["created"], codec.KindInt).(int64)
		return v
	}
	sort.Slice(nodes, func(i, j int) bool { return created(nodes[i]) > created(nodes[j]) })
	if max <= 0 {
		max = defaultSearchLimit
	}
	if len(nodes) > max {
		nodes = nodes[:max]
	}
	return c.hydrateAndFilter(nodes, viewer)
}

// GetActors returns up to max actors ordered by name descending.
func (c *Client) GetActors(max int) ([]*model.Actor, error) {
	actors, err := c.store.GetActors(max)
	if err != nil {
		return nil, classifyErr("getActors", err)
	}
	return actors, nil
}

// Search matches term case-insensitively against object name and
// metadata values, returning up to max surrogate-filtered results.
func (c *Client) Search(viewer *model.Actor, term string, max int) ([]*model.PLUSObject, error) {
	if strings.TrimSpace(term) == "" {
		return nil, &InvalidArgumentError{Argument: "term", Reason: "must not be empty"}
	}
	nodes, err := c.store.Engine().GetNodesByLabel(labelProvenance)
	if err != nil {
		return nil, classifyErr("search", err)
	}

	lowerTerm := strings.ToLower(term)
	var matches []*kernel.Node
	for _, n := range nodes {
		if nodeMatchesTerm(n, lowerTerm) {
			matches = append(matches, n)
		}
	}
	if max <= 0 {
		max = defaultSearchLimit
	}
	if len(matches) > max {
		matches = matches[:max]
	}
	return c.hydrateAndFilter(matches, viewer)
}

func nodeMatchesTerm(n *kernel.Node, lowerTerm string) bool {
	for k, v := range n.Properties {
		if k != "name" && !codec.IsMetadataKey(k) {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), lowerTerm) {
			return true
		}
	}
	return false
}

// ListWorkflows returns up to max Workflow-kind objects.
func (c *Client) ListWorkflows(viewer *model.Actor, max int) ([]*model.PLUSObject, error) {
	nodes, err := c.store.Engine().GetNodesByLabel(labelProvenance)
	if err != nil {
		return nil, classifyErr("listWorkflows", err)
	}
	var workflows []*kernel.Node
	for _, n := range nodes {
		if t, _ := n.Properties["type"].(string); t == string(model.ObjectTypeWorkflow) {
			workflows = append(workflows, n)
		}
	}
	if max <= 0 {
		max = defaultSearchLimit
	}
	if len(workflows) > max {
		workflows = workflows[:max]
	}
	return c.hydrateAndFilter(workflows, viewer)
}

// GetWorkflowMembers returns up to max edges tagged with workflow oid,
// most recent first.
func (c *Client) GetWorkflowMembers(oid string, max int) ([]model.WorkflowMember, error) {
	members, err := c.store.GetWorkflowMembers(oid, max)
	if err != nil {
		return nil, classifyErr("getWorkflowMembers", err)
	}
	return members, nil
}

// GetSingleNode hydrates and surrogate-filters the object identified by
// oid.
func (c *Client) GetSingleNode(viewer *model.Actor, oid string) (*model.PLUSObject, error) {
	obj, err := c.store.GetObject(oid)
	if err != nil {
		return nil, classifyErr(oid, err)
	}
	filtered, err := c.registry.FilterForViewer(c.store.Engine(), obj, viewer)
	if err != nil {
		return nil, classifyErr("getSingleNode", err)
	}
	if filtered == nil {
		c.audit.LogAccessDenied(actorID(viewer), actorName(viewer), oid)
		return nil, &NotFoundError{ID: oid}
	}
	return filtered, nil
}

// ActorExists reports whether aid resolves to a stored Actor.
func (c *Client) ActorExists(aid string) bool {
	for _, label := range c.store.NodeLabels(aid) {
		if label == "Actor" {
			return true
		}
	}
	return false
}

// ActorByName resolves name to a privilege-bearing Actor, for callers
// that need "the calling user" (spec.md §4.8) as a full object to pass
// to the other facade operations, not just its aid or name.
func (c *Client) ActorByName(name string) (*model.Actor, error) {
	node, err := c.store.Engine().GetNodeByProperty("Actor", "name", name)
	if err != nil {
		return nil, classifyErr("actorByName", err)
	}
	actor, err := c.store.GetActor(string(node.ID))
	if err != nil {
		return nil, classifyErr("actorByName", err)
	}
	return actor, nil
}

// CreateActor creates a bcrypt-credentialed Actor (pkg/identity, §4.9),
// for callers — such as cmd/plus's `init`/`login` — that need to manage
// actors through the facade rather than reaching into pkg/graphstore
// directly.
func (c *Client) CreateActor(name, password string, privileges []model.PrivilegeClass) (*model.Actor, error) {
	return identity.CreateActor(c.store, name, password, privileges)
}

// Authenticate verifies name/password against a stored Actor's bcrypt
// hash (pkg/identity, §4.9).
func (c *Client) Authenticate(name, password string) (*model.Actor, error) {
	return identity.Authenticate(c.store, name, password)
}

// Dominates reports whether privilege class a dominates b, resolved by
// name.
func (c *Client) Dominates(a, b string) (bool, error) {
	ok, err := privilege.Dominates(c.store.Engine(), model.PrivilegeClass{Name: a}, model.PrivilegeClass{Name: b})
	if err != nil {
		return false, classifyErr("dominates", err)
	}
	return ok, nil
}

// Taint creates a Data(taint) object owned by actor, marking obj with a
// `marks` edge, carrying description in its metadata.
func (c *Client) Taint(actor *model.Actor, obj string, description string) (*model.PLUSObject, error) {
	if !c.store.Exists(obj) {
		return nil, &NotFoundError{ID: obj}
	}

	taint := &model.PLUSObject{
		OID:      model.NewOID(),
		Kind:     model.NewDataKind(model.DataTaint),
		Name:     "taint:" + obj,
		Created:  time.Now().Unix(),
		Owner:    actor,
		Metadata: map[string]any{"description": description},
	}
	if _, err := c.store.StoreObject(taint); err != nil {
		c.audit.LogTaint(actorID(actor), actorName(actor), obj, false, err.Error())
		return nil, classifyErr("taint", err)
	}
	if err := c.store.StoreEdge(&model.PLUSEdge{From: taint.OID, To: obj, Type: model.EdgeMarks}); err != nil {
		c.audit.LogTaint(actorID(actor), actorName(actor), obj, false, err.Error())
		return nil, classifyErr("taint", err)
	}
	c.audit.LogTaint(actorID(actor), actorName(actor), obj, true, "")
	return taint, nil
}

// RemoveTaints deletes every taint object marking obj, cascading their
// `marks` edges.
func (c *Client) RemoveTaints(actor *model.Actor, obj string) (int, error) {
	incoming, err := c.store.Engine().GetIncomingEdges(kernel.NodeID(obj))
	if err != nil {
		c.audit.LogRemoveTaints(actorID(actor), actorName(actor), obj, 0, false, err.Error())
		return 0, classifyErr("removeTaints", err)
	}

	removed := 0
	for _, e := range incoming {
		if e.Type != string(model.EdgeMarks) {
			continue
		}
		sourceNode, err := c.store.Engine().GetNode(e.StartNode)
		if err != nil {
			continue
		}
		if sub, _ := sourceNode.Properties["subtype"].(string); sub != string(model.DataTaint) {
			continue
		}
		if err := c.store.DeleteObject(string(e.StartNode), true); err != nil {
			c.audit.LogRemoveTaints(actorID(actor), actorName(actor), obj, removed, false, err.Error())
			return removed, classifyErr("removeTaints", err)
		}
		removed++
	}
	c.audit.LogRemoveTaints(actorID(actor), actorName(actor), obj, removed, true, "")
	return removed, nil
}

// Query evaluates a textual pattern-query string and returns
// surrogate-filtered results.
func (c *Client) Query(viewer *model.Actor, textQuery string) ([]*model.PLUSObject, error) {
	nodes, err := kernel.Query(c.store.Engine(), textQuery)
	if err != nil {
		return nil, &InvalidArgumentError{Argument: "query", Reason: err.Error()}
	}
	return c.hydrateAndFilter(nodes, viewer)
}

func (c *Client) hydrateAndFilter(nodes []*kernel.Node, viewer *model.Actor) ([]*model.PLUSObject, error) {
	out := make([]*model.PLUSObject, 0, len(nodes))
	for _, n := range nodes {
		obj, err := factory.HydrateObject(c.store.Engine(), n)
		if err != nil {
			return nil, classifyErr("hydrate", err)
		}
		filtered, err := c.registry.FilterForViewer(c.store.Engine(), obj, viewer)
		if err != nil {
			return nil, classifyErr("filter", err)
		}
		if filtered != nil {
			out = append(out, filtered)
		}
	}
	return out, nil
}

const labelProvenance = "Provenance"

func actorID(actor *model.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.AID
}

func actorName(actor *model.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.Name
}
