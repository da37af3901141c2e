package graphstore

import (
	"time"

	"github.com/orneryd/plus/pkg/codec"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
)

func actorToNode(a *model.Actor) *kernel.Node {
	props := codec.EncodeMap(map[string]any{
		"aid":          a.AID,
		"name":         a.Name,
		"type":         string(a.Type),
		"displayName":  a.DisplayName,
		"email":        a.Email,
		"passwordHash": a.PasswordHash,
	}, nil)
	return &kernel.Node{ID: kernel.NodeID(a.AID), Labels: []string{labelActor}, Properties: props}
}

func objectToNode(o *model.PLUSObject) *kernel.Node {
	typ, subtype := o.Kind.StorageTypeSubtype()
	props := map[string]any{
		"oid":       o.OID,
		"type":      typ,
		"subtype":   subtype,
		"name":      o.Name,
		"created":   o.Created,
		"heritable": o.Heritable,
	}
	encoded := codec.EncodeMap(props, o.Metadata)
	return &kernel.Node{ID: kernel.NodeID(o.OID), Labels: []string{labelProvenance}, Properties: encoded}
}

func privilegeClassToNode(p model.PrivilegeClass) *kernel.Node {
	props := codec.EncodeMap(map[string]any{"pid": p.PID, "name": p.Name}, nil)
	return &kernel.Node{ID: kernel.NodeID(p.PID), Labels: []string{labelPrivilege}, Properties: props}
}

func plusEdgeToKernelEdge(e *model.PLUSEdge) *kernel.Edge {
	props := map[string]any{}
	if e.Workflow != nil {
		props["workflow"] = *e.Workflow
	}
	id := e.ID
	if id == "" {
		wf := ""
		if e.Workflow != nil {
			wf = *e.Workflow
		}
		id = string(e.From) + "|" + string(e.To) + "|" + string(e.Type) + "|" + wf
	}
	return &kernel.Edge{
		ID:         kernel.EdgeID(id),
		StartNode:  kernel.NodeID(e.From),
		EndNode:    kernel.NodeID(e.To),
		Type:       string(e.Type),
		Properties: props,
		CreatedAt:  time.Now(),
	}
}
