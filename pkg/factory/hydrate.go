// Package factory polymorphically reconstructs domain entities
// (model.PLUSObject, model.PLUSEdge, model.NPE) from the raw nodes and
// edges pkg/kernel returns, per spec.md §4.4: dispatch on (type, subtype)
// into the tagged ObjectKind variant, falling back to generic data when
// nothing matches.
package factory

import (
	"log"
	"sort"

	"github.com/orneryd/plus/pkg/codec"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
)

// labelProvenance/labelActor/labelPrivilege/labelNonProvenance mirror the label
// names pkg/graphstore writes nodes under (spec.md §4.3's label list).
const (
	labelProvenance    = "Provenance"
	labelActor         = "Actor"
	labelPrivilege     = "PrivilegeClass"
	labelNonProvenance = "NonProvenance"

	relOwns         = "owns"
	relControlledBy = "controlledBy"
	relNPE          = "NPE"
)

// HydrateObject builds a model.PLUSObject from a stored Provenance node:
// (a) decode first-class properties via the codec, (b) strip metadata:
// and restore the metadata map, (c) attach the owner via the inbound
// owns edge, (d) attach the privilege set via outbound controlledBy
// edges.
func HydrateObject(engine kernel.Engine, node *kernel.Node) (*model.PLUSObject, error) {
	firstClass, metadata := codec.DecodeMap(node.Properties)

	typ, _ := firstClass["type"].(string)
	subtype, _ := firstClass["subtype"].(string)

	var kind model.ObjectKind
	switch model.ObjectType(typ) {
	case model.ObjectTypeActivity:
		kind = model.NewActivityKind()
	case model.ObjectTypeWorkflow:
		kind = model.NewWorkflowKind()
	case model.ObjectTypeInvocation:
		kind = model.NewInvocationKind()
	default:
		kind = model.NewDataKind(dataSubtypeOrGeneric(subtype))
	}

	obj := &model.PLUSObject{
		OID:      string(node.ID),
		Kind:     kind,
		Name:     asString(firstClass["name"]),
		Created:  asInt64(firstClass["created"]),
		Metadata: metadata,
	}
	if h, ok := firstClass["heritable"]; ok {
		obj.Heritable = asBool(h)
	}

	if owner, err := hydrateOwner(engine, node.ID); err != nil {
		log.Printf("factory: hydrating owner of %s: %v", node.ID, err)
	} else {
		obj.Owner = owner
	}

	privileges, err := hydratePrivileges(engine, node.ID)
	if err != nil {
		log.Printf("factory: hydrating privileges of %s: %v", node.ID, err)
	}
	obj.Privileges = privileges

	return obj, nil
}

func dataSubtypeOrGeneric(s string) model.DataSubtype {
	switch model.DataSubtype(s) {
	case model.DataString, model.DataFile, model.DataFileImage, model.DataURL, model.DataRelational, model.DataTaint:
		return model.DataSubtype(s)
	default:
		return model.DataGeneric
	}
}

// hydrateOwner reads the single inbound owns edge into objID and hydrates
// the owning actor. Ownership is single-valued (spec.md invariant #6): if
// more than one owns edge exists, the first by edge ID is retained and a
// warning is logged.
func hydrateOwner(engine kernel.Engine, objID kernel.NodeID) (*model.Actor, error) {
	incoming, err := engine.GetIncomingEdges(objID)
	if err != nil {
		return nil, err
	}

	var ownsEdges []*kernel.Edge
	for _, e := range incoming {
		if e.Type == relOwns {
			ownsEdges = append(ownsEdges, e)
		}
	}
	if len(ownsEdges) == 0 {
		return nil, nil
	}
	sort.Slice(ownsEdges, func(i, j int) bool { return ownsEdges[i].ID < ownsEdges[j].ID })
	if len(ownsEdges) > 1 {
		log.Printf("factory: object %s has %d inbound owns edges, retaining first (%s)", objID, len(ownsEdges), ownsEdges[0].ID)
	}

	ownerNode, err := engine.GetNode(ownsEdges[0].StartNode)
	if err != nil {
		return nil, err
	}
	return HydrateActor(ownerNode), nil
}

// HydratePrivilegesOf returns the PrivilegeClasses a node is
// controlledBy — exported so callers outside this package (pkg/graphstore's
// actor read path) can hydrate privileges for entities other than
// PLUSObjects, which HydrateObject already does internally.
func HydratePrivilegesOf(engine kernel.Engine, objID kernel.NodeID) ([]model.PrivilegeClass, error) {
	return hydratePrivileges(engine, objID)
}

func hydratePrivileges(engine kernel.Engine, objID kernel.NodeID) ([]model.PrivilegeClass, error) {
	outgoing, err := engine.GetOutgoingEdges(objID)
	if err != nil {
		return nil, err
	}

	var privileges []model.PrivilegeClass
	for _, e := range outgoing {
		if e.Type != relControlledBy {
			continue
		}
		pNode, err := engine.GetNode(e.EndNode)
		if err != nil {
			continue
		}
		privileges = append(privileges, model.PrivilegeClass{
			PID:  asString(pNode.Properties["pid"]),
			Name: asString(pNode.Properties["name"]),
		})
	}
	return privileges, nil
}

// HydrateActor builds a model.Actor from a stored Actor node.
func HydrateActor(node *kernel.Node) *model.Actor {
	return &model.Actor{
		AID:          asString(node.Properties["aid"]),
		Name:         asString(node.Properties["name"]),
		Type:         model.ActorType(asString(node.Properties["type"])),
		DisplayName:  asString(node.Properties["displayName"]),
		Email:        asString(node.Properties["email"]),
		PasswordHash: asString(node.Properties["passwordHash"]),
	}
}

// HydratePrivilegeClass builds a model.PrivilegeClass from a stored
// PrivilegeClass node.
func HydratePrivilegeClass(node *kernel.Node) model.PrivilegeClass {
	return model.PrivilegeClass{
		PID:  asString(node.Properties["pid"]),
		Name: asString(node.Properties["name"]),
	}
}

// HydrateEdge builds a model.PLUSEdge from a stored provenance
// relationship. A non-empty workflow property is copied as an OID string
// into Workflow (nil when absent or empty); it is not resolved to a
// workflow object, and no caller treats the default workflow's OID
// specially.
func HydrateEdge(edge *kernel.Edge) *model.PLUSEdge {
	out := &model.PLUSEdge{
		ID:   string(edge.ID),
		From: string(edge.StartNode),
		To:   string(edge.EndNode),
		Type: model.EdgeType(edge.Type),
	}
	if wf, ok := edge.Properties["workflow"]; ok {
		s := asString(wf)
		if s != "" {
			out.Workflow = &s
		}
	}
	return out
}

// HydrateNPE builds a model.NPE from a stored NPE relationship. The
// endpoint kind (PLUSObject vs NPID) is determined by the caller via the
// endpoint node's labels; HydrateNPE itself only needs the edge's own
// properties.
func HydrateNPE(edge *kernel.Edge) *model.NPE {
	return &model.NPE{
		NPEID:   asString(edge.Properties["npeid"]),
		From:    string(edge.StartNode),
		To:      string(edge.EndNode),
		Type:    asString(edge.Properties["type"]),
		Created: asInt64(edge.Properties["created"]),
	}
}

// EndpointIsPLUSObject reports whether node carries the Provenance label,
// the label/kind distinction HydrateNPE's caller uses to decide whether an
// NPE endpoint is a PLUSObject or an NPID.
func EndpointIsPLUSObject(node *kernel.Node) bool {
	for _, l := range node.Labels {
		if l == labelProvenance {
			return true
		}
	}
	return false
}

func asString(v any) string {
	s, _ := codec.Decode(v, codec.KindString).(string)
	return s
}

func asInt64(v any) int64 {
	i, _ := codec.Decode(v, codec.KindInt).(int64)
	return i
}

func asBool(v any) bool {
	b, _ := codec.Decode(v, codec.KindBool).(bool)
	return b
}
