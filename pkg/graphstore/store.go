// Package graphstore implements C3: schema declaration, bootstrap, and
// CRUD for the provenance domain entities, wrapping a pkg/kernel.Engine.
package graphstore

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/orneryd/plus/pkg/codec"
	"github.com/orneryd/plus/pkg/factory"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
)

const (
	labelProvenance    = "Provenance"
	labelActor         = "Actor"
	labelPrivilege     = "PrivilegeClass"
	labelNonProvenance = "NonProvenance"

	relOwns         = "owns"
	relControlledBy = "controlledBy"
	relDominates    = "dominates"
	relNPE          = "NPE"
)

// GraphStore wraps a kernel.Engine with the provenance domain's bootstrap
// sequence and entity CRUD, per spec.md §4.3.
type GraphStore struct {
	engine kernel.Engine

	once sync.Once

	// DefaultWorkflowOID and UnknownActivityOID are assigned during
	// Bootstrap and recognized by factory.HydrateEdge callers thereafter.
	DefaultWorkflowOID string
	UnknownActivityOID string
	GodAID             string
	PublicAID          string
}

// New wraps engine in a GraphStore. The engine is not opened or closed
// here; callers own its lifecycle.
func New(engine kernel.Engine) *GraphStore {
	return &GraphStore{engine: engine}
}

// Engine exposes the underlying kernel engine for components (pkg/lineage,
// pkg/privilege) that need direct traversal/query access.
func (gs *GraphStore) Engine() kernel.Engine { return gs.engine }

// Bootstrap declares the schema constraints and inserts the built-in
// workflow/activity/actor/privilege-lattice fixtures, exactly once,
// idempotently: if the default workflow already exists, Bootstrap is a
// no-op (spec.md §4.3).
func (gs *GraphStore) Bootstrap() error {
	var outerErr error
	gs.once.Do(func() {
		outerErr = gs.bootstrap()
	})
	return outerErr
}

func (gs *GraphStore) bootstrap() error {
	existing, err := gs.engine.GetNodeByProperty(labelProvenance, "name", model.WellKnownWorkflowName)
	if err == nil && existing != nil {
		gs.DefaultWorkflowOID = string(existing.ID)
		if activity, err := gs.engine.GetNodeByProperty(labelProvenance, "name", model.WellKnownUnknownActivityName); err == nil {
			gs.UnknownActivityOID = string(activity.ID)
		}
		if god, err := gs.engine.GetNodeByProperty(labelActor, "name", model.ActorNameGod); err == nil {
			gs.GodAID = string(god.ID)
		}
		if public, err := gs.engine.GetNodeByProperty(labelActor, "name", model.ActorNamePublic); err == nil {
			gs.PublicAID = string(public.ID)
		}
		return nil
	}

	schema := gs.engine.GetSchema()
	for _, c := range []kernel.Constraint{
		{Name: "unique_oid", Type: kernel.ConstraintUnique, Label: labelProvenance, Properties: []string{"oid"}},
		{Name: "unique_aid", Type: kernel.ConstraintUnique, Label: labelActor, Properties: []string{"aid"}},
		{Name: "unique_pid", Type: kernel.ConstraintUnique, Label: labelPrivilege, Properties: []string{"pid"}},
		{Name: "unique_npid", Type: kernel.ConstraintUnique, Label: labelNonProvenance, Properties: []string{"npid"}},
	} {
		if err := schema.AddConstraint(c); err != nil {
			return fmt.Errorf("graphstore: bootstrap: adding constraint %s: %w", c.Name, err)
		}
	}

	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return fmt.Errorf("graphstore: bootstrap: %w", err)
	}

	god := &model.Actor{AID: model.NewOID(), Name: model.ActorNameGod, Type: model.ActorUser}
	public := &model.Actor{AID: model.NewOID(), Name: model.ActorNamePublic, Type: model.ActorUser}
	for _, a := range []*model.Actor{god, public} {
		if err := tx.CreateNode(actorToNode(a)); err != nil {
			tx.Rollback()
			return fmt.Errorf("graphstore: bootstrap: creating actor %s: %w", a.Name, err)
		}
	}
	gs.GodAID = god.AID
	gs.PublicAID = public.AID

	workflow := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewWorkflowKind(), Name: model.WellKnownWorkflowName, Created: 0}
	activity := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewActivityKind(), Name: model.WellKnownUnknownActivityName, Created: 0}
	for _, o := range []*model.PLUSObject{workflow, activity} {
		if err := tx.CreateNode(objectToNode(o)); err != nil {
			tx.Rollback()
			return fmt.Errorf("graphstore: bootstrap: creating object %s: %w", o.Name, err)
		}
	}
	gs.DefaultWorkflowOID = workflow.OID
	gs.UnknownActivityOID = activity.OID

	names := append([]string{
		model.PrivilegeAdmin, model.PrivilegeNationalSecurity, model.PrivilegeEmergencyHigh,
		model.PrivilegeEmergencyLow, model.PrivilegePrivateMedical, model.PrivilegePublic,
	}, model.NumericLatticeLevels...)
	pids := map[string]string{}
	for _, name := range names {
		pid := model.NewOID()
		pids[name] = pid
		if err := tx.CreateNode(privilegeClassToNode(model.PrivilegeClass{PID: pid, Name: name})); err != nil {
			tx.Rollback()
			return fmt.Errorf("graphstore: bootstrap: creating privilege class %s: %w", name, err)
		}
	}

	dominanceChain := [][2]string{
		{model.PrivilegeAdmin, model.PrivilegeNationalSecurity},
		{model.PrivilegeNationalSecurity, model.PrivilegeEmergencyHigh},
		{model.PrivilegeEmergencyHigh, model.PrivilegeEmergencyLow},
		{model.PrivilegeAdmin, model.PrivilegePrivateMedical},
		{model.PrivilegePrivateMedical, model.PrivilegePublic},
		{model.PrivilegeEmergencyLow, model.PrivilegePublic},
		{model.PrivilegeNationalSecurity, model.PrivilegePublic},
	}
	for i := 0; i < len(model.NumericLatticeLevels)-1; i++ {
		dominanceChain = append(dominanceChain, [2]string{model.NumericLatticeLevels[i], model.NumericLatticeLevels[i+1]})
	}

	for _, pair := range dominanceChain {
		fromPID, toPID := pids[pair[0]], pids[pair[1]]
		edge := &kernel.Edge{
			ID:        kernel.EdgeID(fmt.Sprintf("dominates:%s->%s", fromPID, toPID)),
			StartNode: kernel.NodeID(fromPID),
			EndNode:   kernel.NodeID(toPID),
			Type:      relDominates,
		}
		if err := tx.CreateEdge(edge); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
			tx.Rollback()
			return fmt.Errorf("graphstore: bootstrap: creating dominates edge %s->%s: %w", pair[0], pair[1], err)
		}
	}

	return tx.Commit()
}

// SeedPrivilegeClass inserts a PrivilegeClass named name and a `dominates`
// edge from it to each already-existing class named in dominatesNames. It
// is idempotent by name: a class already present is returned unmutated.
// This is the extension point pkg/config's optional lattice-seed file
// wires into, for deployments that need privilege classes beyond the
// built-in chain Bootstrap installs.
func (gs *GraphStore) SeedPrivilegeClass(name string, dominatesNames []string) (string, error) {
	if existing, err := gs.engine.GetNodeByProperty(labelPrivilege, "name", name); err == nil && existing != nil {
		return string(existing.ID), nil
	}

	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return "", fmt.Errorf("graphstore: seed privilege class %s: %w", name, err)
	}

	pid := model.NewOID()
	if err := tx.CreateNode(privilegeClassToNode(model.PrivilegeClass{PID: pid, Name: name})); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("graphstore: seed privilege class %s: %w", name, err)
	}

	for _, dname := range dominatesNames {
		target, err := gs.engine.GetNodeByProperty(labelPrivilege, "name", dname)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("graphstore: seed privilege class %s: dominated class %q not found: %w", name, dname, err)
		}
		edge := &kernel.Edge{
			ID:        kernel.EdgeID(fmt.Sprintf("dominates:%s->%s", pid, target.ID)),
			StartNode: kernel.NodeID(pid),
			EndNode:   target.ID,
			Type:      relDominates,
		}
		if err := tx.CreateEdge(edge); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("graphstore: seed privilege class %s: dominates edge to %q: %w", name, dname, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return pid, nil
}

// --- actor -------------------------------------------------------------

// StoreActor inserts actor and its privilege-class edges, or returns the
// pre-existing one unmutated (privileges included, via GetActor) if its
// aid already exists (spec.md invariant #1).
func (gs *GraphStore) StoreActor(actor *model.Actor) (*model.Actor, error) {
	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return nil, err
	}

	if err := tx.CreateNode(actorToNode(actor)); err != nil {
		tx.Rollback()
		if errors.Is(err, kernel.ErrAlreadyExists) {
			existing, getErr := gs.engine.GetNode(kernel.NodeID(actor.AID))
			if getErr != nil {
				return nil, getErr
			}
			return gs.hydrateActorPrivileges(existing)
		}
		return nil, err
	}

	for _, p := range actor.Privileges {
		if err := gs.linkPrivilege(tx, actor.AID, p); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return actor, nil
}

// GetActor returns the actor identified by aid, with its privilege-class
// edges hydrated.
func (gs *GraphStore) GetActor(aid string) (*model.Actor, error) {
	node, err := gs.engine.GetNode(kernel.NodeID(aid))
	if err != nil {
		return nil, err
	}
	return gs.hydrateActorPrivileges(node)
}

func (gs *GraphStore) hydrateActorPrivileges(node *kernel.Node) (*model.Actor, error) {
	actor := factory.HydrateActor(node)
	privileges, err := factory.HydratePrivilegesOf(gs.engine, node.ID)
	if err != nil {
		return nil, err
	}
	actor.Privileges = privileges
	return actor, nil
}

// --- object --------------------------------------------------------------

// StoreObject inserts obj with its owner and privilege edges, or returns
// the pre-existing object unmutated if its oid already exists.
func (gs *GraphStore) StoreObject(obj *model.PLUSObject) (*model.PLUSObject, error) {
	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return nil, err
	}

	if err := tx.CreateNode(objectToNode(obj)); err != nil {
		tx.Rollback()
		if errors.Is(err, kernel.ErrAlreadyExists) {
			existing, getErr := gs.engine.GetNode(kernel.NodeID(obj.OID))
			if getErr != nil {
				return nil, getErr
			}
			return factory.HydrateObject(gs.engine, existing)
		}
		return nil, err
	}

	if obj.Owner != nil {
		if err := gs.linkOwner(tx, obj); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, p := range obj.Privileges {
		if err := gs.linkPrivilege(tx, obj.OID, p); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (gs *GraphStore) linkOwner(tx kernel.Tx, obj *model.PLUSObject) error {
	incoming, err := gs.engine.GetIncomingEdges(kernel.NodeID(obj.OID))
	if err != nil {
		return err
	}
	for _, e := range incoming {
		if e.Type == relOwns && string(e.StartNode) != obj.Owner.AID {
			log.Printf("graphstore: object %s already has owner %s, ignoring new owner %s", obj.OID, e.StartNode, obj.Owner.AID)
			return nil
		}
	}

	if _, err := tx.GetNode(kernel.NodeID(obj.Owner.AID)); err != nil {
		if err := tx.CreateNode(actorToNode(obj.Owner)); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
			return err
		}
	}

	edge := &kernel.Edge{
		ID:        kernel.EdgeID(fmt.Sprintf("owns:%s->%s", obj.Owner.AID, obj.OID)),
		StartNode: kernel.NodeID(obj.Owner.AID),
		EndNode:   kernel.NodeID(obj.OID),
		Type:      relOwns,
	}
	if err := tx.CreateEdge(edge); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
		return err
	}
	return nil
}

// linkPrivilege ensures the named privilege class exists (get-or-create)
// and links object -[controlledBy]-> class.
func (gs *GraphStore) linkPrivilege(tx kernel.Tx, objectOID string, p model.PrivilegeClass) error {
	pid := p.PID
	if pid == "" {
		existing, err := gs.engine.GetNodeByProperty(labelPrivilege, "name", p.Name)
		if err == nil && existing != nil {
			pid = string(existing.ID)
		} else {
			pid = model.NewOID()
			if err := tx.CreateNode(privilegeClassToNode(model.PrivilegeClass{PID: pid, Name: p.Name})); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
				return err
			}
		}
	}

	edge := &kernel.Edge{
		ID:        kernel.EdgeID(fmt.Sprintf("controlledBy:%s->%s", objectOID, pid)),
		StartNode: kernel.NodeID(objectOID),
		EndNode:   kernel.NodeID(pid),
		Type:      relControlledBy,
	}
	if err := tx.CreateEdge(edge); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
		return err
	}
	return nil
}

// --- edge ------------------------------------------------------------

// ErrDanglingEdge is returned when an edge or NPE references a missing
// required endpoint.
var ErrDanglingEdge = errors.New("graphstore: edge references missing endpoint")

// StoreEdge creates a PLUSEdge, requiring both endpoints to already
// exist (spec.md invariant #2).
func (gs *GraphStore) StoreEdge(edge *model.PLUSEdge) error {
	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return err
	}

	kEdge := plusEdgeToKernelEdge(edge)
	if err := tx.CreateEdge(kEdge); err != nil {
		tx.Rollback()
		if errors.Is(err, kernel.ErrAlreadyExists) {
			return nil
		}
		if errors.Is(err, kernel.ErrInvalidEdge) {
			return fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, edge.From, edge.To)
		}
		return err
	}
	return tx.Commit()
}

// --- NPE ---------------------------------------------------------------

// StoreNPE creates a non-provenance edge, requiring From to already
// exist and auto-creating To as an NPID if no node with that ID exists
// yet (spec.md invariant #3).
func (gs *GraphStore) StoreNPE(npe *model.NPE) error {
	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return err
	}

	if _, err := gs.engine.GetNode(kernel.NodeID(npe.From)); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: NPE.From %s", ErrDanglingEdge, npe.From)
	}

	if _, err := gs.engine.GetNode(kernel.NodeID(npe.To)); err != nil {
		npidNode := &kernel.Node{
			ID:         kernel.NodeID(npe.To),
			Labels:     []string{labelNonProvenance},
			Properties: map[string]any{"npid": npe.To},
		}
		if err := tx.CreateNode(npidNode); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
			tx.Rollback()
			return err
		}
	}

	kEdge := &kernel.Edge{
		ID:        kernel.EdgeID(npe.NPEID),
		StartNode: kernel.NodeID(npe.From),
		EndNode:   kernel.NodeID(npe.To),
		Type:      relNPE,
		Properties: map[string]any{
			"type":    npe.Type,
			"npeid":   npe.NPEID,
			"created": npe.Created,
		},
	}
	if err := tx.CreateEdge(kEdge); err != nil {
		tx.Rollback()
		if errors.Is(err, kernel.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	return tx.Commit()
}

// --- collection ----------------------------------------------------------

// StoreCollection persists actors, then objects, then edges, then NPEs in
// a single transaction, returning the count of newly persisted elements
// (spec.md §4.3).
func (gs *GraphStore) StoreCollection(col *model.ProvenanceCollection) (int, error) {
	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, a := range col.Actors {
		if err := tx.CreateNode(actorToNode(a)); err != nil {
			if errors.Is(err, kernel.ErrAlreadyExists) {
				continue
			}
			tx.Rollback()
			return 0, err
		}
		count++
	}

	for _, o := range col.Objects {
		if err := tx.CreateNode(objectToNode(o)); err != nil {
			if errors.Is(err, kernel.ErrAlreadyExists) {
				continue
			}
			tx.Rollback()
			return 0, err
		}
		count++
		if o.Owner != nil {
			if err := gs.linkOwner(tx, o); err != nil {
				tx.Rollback()
				return 0, err
			}
		}
		for _, p := range o.Privileges {
			if err := gs.linkPrivilege(tx, o.OID, p); err != nil {
				tx.Rollback()
				return 0, err
			}
		}
	}

	for _, e := range col.Edges {
		if err := tx.CreateEdge(plusEdgeToKernelEdge(e)); err != nil {
			if errors.Is(err, kernel.ErrAlreadyExists) {
				continue
			}
			tx.Rollback()
			if errors.Is(err, kernel.ErrInvalidEdge) {
				return 0, fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.From, e.To)
			}
			return 0, err
		}
		count++
	}

	for _, npe := range col.NPEs {
		if _, err := gs.engine.GetNode(kernel.NodeID(npe.To)); err != nil {
			npidNode := &kernel.Node{ID: kernel.NodeID(npe.To), Labels: []string{labelNonProvenance}, Properties: map[string]any{"npid": npe.To}}
			if err := tx.CreateNode(npidNode); err != nil && !errors.Is(err, kernel.ErrAlreadyExists) {
				tx.Rollback()
				return 0, err
			}
		}
		kEdge := &kernel.Edge{
			ID: kernel.EdgeID(npe.NPEID), StartNode: kernel.NodeID(npe.From), EndNode: kernel.NodeID(npe.To), Type: relNPE,
			Properties: map[string]any{"type": npe.Type, "npeid": npe.NPEID, "created": npe.Created},
		}
		if err := tx.CreateEdge(kEdge); err != nil {
			if errors.Is(err, kernel.ErrAlreadyExists) {
				continue
			}
			tx.Rollback()
			return 0, err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// --- delete --------------------------------------------------------------

// DeleteObject deletes oid. If cascade, all incident edges are deleted
// first; otherwise DeleteObject fails if any incident edge remains.
func (gs *GraphStore) DeleteObject(oid string, cascade bool) error {
	id := kernel.NodeID(oid)
	out, err := gs.engine.GetOutgoingEdges(id)
	if err != nil {
		return err
	}
	in, err := gs.engine.GetIncomingEdges(id)
	if err != nil {
		return err
	}
	incident := append(out, in...)

	if len(incident) > 0 && !cascade {
		return fmt.Errorf("graphstore: cannot delete %s: %d incident edges remain and cascade=false", oid, len(incident))
	}

	tx, err := kernel.BeginTx(gs.engine, false)
	if err != nil {
		return err
	}
	for _, e := range incident {
		if err := tx.DeleteEdge(e.ID); err != nil && !errors.Is(err, kernel.ErrNotFound) {
			tx.Rollback()
			return err
		}
	}
	if err := tx.DeleteNode(id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DeleteEdge deletes the first edge matching (from, to, typ, workflow),
// tolerating nil == nil on workflow.
func (gs *GraphStore) DeleteEdge(from, to, typ string, workflow *string) error {
	edges, err := gs.engine.GetEdgesBetween(kernel.NodeID(from), kernel.NodeID(to))
	if err != nil {
		return err
	}

	for _, e := range edges {
		if e.Type != typ {
			continue
		}
		var edgeWorkflow *string
		if wf, ok := e.Properties["workflow"]; ok {
			s := asString(wf)
			edgeWorkflow = &s
		}
		if workflowsMatch(workflow, edgeWorkflow) {
			tx, err := kernel.BeginTx(gs.engine, false)
			if err != nil {
				return err
			}
			if err := tx.DeleteEdge(e.ID); err != nil {
				tx.Rollback()
				return err
			}
			return tx.Commit()
		}
	}
	return kernel.ErrNotFound
}

func workflowsMatch(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// --- query ---------------------------------------------------------------

const defaultLimit = 100

// clampLimit returns n when positive, else defaultLimit (spec.md §7:
// out-of-range limits are clamped, never an error).
func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

// Exists reports whether id (an oid, aid, pid, or npid) resolves to a
// node in the store.
func (gs *GraphStore) Exists(id string) bool {
	_, err := gs.engine.GetNode(kernel.NodeID(id))
	return err == nil
}

// GetObject hydrates the Provenance node identified by oid. It returns
// kernel.ErrNotFound untouched so callers can type-check against it.
func (gs *GraphStore) GetObject(oid string) (*model.PLUSObject, error) {
	node, err := gs.engine.GetNode(kernel.NodeID(oid))
	if err != nil {
		return nil, err
	}
	return factory.HydrateObject(gs.engine, node)
}

// NodeLabels returns the labels carried by id, or nil if id does not
// resolve to a node — used to distinguish a PLUSObject OID from an NPID
// without assuming the caller already knows which it is.
func (gs *GraphStore) NodeLabels(id string) []string {
	node, err := gs.engine.GetNode(kernel.NodeID(id))
	if err != nil {
		return nil
	}
	return node.Labels
}

// GetActors returns up to limit actors ordered by name descending.
func (gs *GraphStore) GetActors(limit int) ([]*model.Actor, error) {
	nodes, err := gs.engine.GetNodesByLabel(labelActor)
	if err != nil {
		return nil, err
	}
	sort.Slice(nodes, func(i, j int) bool {
		return asString(nodes[i].Properties["name"]) > asString(nodes[j].Properties["name"])
	})
	limit = clampLimit(limit)
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	actors := make([]*model.Actor, 0, len(nodes))
	for _, n := range nodes {
		actor, err := gs.hydrateActorPrivileges(n)
		if err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}
	return actors, nil
}

// GetWorkflowMembers returns up to limit edges tagged with the given
// workflow OID, most recent first, paired with hydrated endpoints.
func (gs *GraphStore) GetWorkflowMembers(workflow string, limit int) ([]model.WorkflowMember, error) {
	edges, err := gs.engine.GetEdgesByProperty("workflow", workflow)
	if err != nil {
		return nil, err
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].CreatedAt.After(edges[j].CreatedAt) })

	limit = clampLimit(limit)
	if len(edges) > limit {
		edges = edges[:limit]
	}

	members := make([]model.WorkflowMember, 0, len(edges))
	for _, e := range edges {
		plusEdge := factory.HydrateEdge(e)
		fromNode, err := gs.engine.GetNode(e.StartNode)
		if err != nil {
			continue
		}
		toNode, err := gs.engine.GetNode(e.EndNode)
		if err != nil {
			continue
		}
		fromObj, _ := factory.HydrateObject(gs.engine, fromNode)
		toObj, _ := factory.HydrateObject(gs.engine, toNode)
		members = append(members, model.WorkflowMember{Edge: plusEdge, From: fromObj, To: toObj})
	}
	return members, nil
}

func asString(v any) string {
	s, _ := codec.Decode(v, codec.KindString).(string)
	return s
}
