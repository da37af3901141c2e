package privilege

import (
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
)

// SurrogatePolicy produces the view of o exposed to viewer once dominance
// over o's privilege classes has been established. dominated is true only
// when viewer dominates every class in o.Privileges; policies may still
// choose to expose a partial view when dominated is false, per spec.md
// §4.5's "partially authorized" case.
type SurrogatePolicy interface {
	Surrogate(o *model.PLUSObject, viewer *model.Actor, dominated bool) *model.PLUSObject
}

// fullOrNilPolicy is the default policy: full object when dominated,
// nothing otherwise. Most DataSubtypes register no policy and fall back
// to this one.
type fullOrNilPolicy struct{}

func (fullOrNilPolicy) Surrogate(o *model.PLUSObject, _ *model.Actor, dominated bool) *model.PLUSObject {
	if dominated {
		return o
	}
	return nil
}

// partialPolicy exposes only oid/type/name when the viewer is not fully
// dominant, never redacting to nothing — registered for subtypes whose
// existence is itself meant to be visible (taint markers, workflow
// membership) even to a viewer lacking full clearance.
type partialPolicy struct{}

func (partialPolicy) Surrogate(o *model.PLUSObject, _ *model.Actor, dominated bool) *model.PLUSObject {
	if dominated {
		return o
	}
	return &model.PLUSObject{OID: o.OID, Kind: o.Kind, Name: o.Name}
}

// Registry maps an object's DataSubtype/ObjectType to the SurrogatePolicy
// governing it, resolved to a default full-redaction policy when nothing
// is registered (spec.md's Open Question on surrogate-generation, resolved
// per SPEC_FULL.md §4.5).
type Registry struct {
	byDataSubtype map[model.DataSubtype]SurrogatePolicy
	byObjectType  map[model.ObjectType]SurrogatePolicy
	fallback      SurrogatePolicy
}

// NewRegistry returns a registry pre-populated with the two subtypes the
// design note calls out by name: taint and workflow.
func NewRegistry() *Registry {
	r := &Registry{
		byDataSubtype: map[model.DataSubtype]SurrogatePolicy{},
		byObjectType:  map[model.ObjectType]SurrogatePolicy{},
		fallback:      fullOrNilPolicy{},
	}
	r.RegisterDataSubtype(model.DataTaint, partialPolicy{})
	r.RegisterObjectType(model.ObjectTypeWorkflow, partialPolicy{})
	return r
}

// RegisterDataSubtype overrides the policy for a Data(subtype) kind.
func (r *Registry) RegisterDataSubtype(subtype model.DataSubtype, p SurrogatePolicy) {
	r.byDataSubtype[subtype] = p
}

// RegisterObjectType overrides the policy for a non-Data ObjectKind.
func (r *Registry) RegisterObjectType(typ model.ObjectType, p SurrogatePolicy) {
	r.byObjectType[typ] = p
}

func (r *Registry) policyFor(k model.ObjectKind) SurrogatePolicy {
	if sub, ok := k.Subtype(); ok {
		if p, ok := r.byDataSubtype[sub]; ok {
			return p
		}
	}
	if p, ok := r.byObjectType[k.Type()]; ok {
		return p
	}
	return r.fallback
}

// FilterForViewer is the single call site pkg/lineage and pkg/client
// funnel through before a PLUSObject reaches a viewer (spec.md §9's design
// note). It establishes dominance over every class in o.Privileges, then
// dispatches to the registered SurrogatePolicy. An object with no
// privilege classes is visible to every viewer (dominated trivially).
func (r *Registry) FilterForViewer(engine kernel.Engine, o *model.PLUSObject, viewer *model.Actor) (*model.PLUSObject, error) {
	dominated := true
	for _, class := range o.Privileges {
		ok, err := DominatesAny(engine, viewerPrivileges(viewer), class)
		if err != nil {
			return nil, err
		}
		if !ok {
			dominated = false
			break
		}
	}

	policy := r.policyFor(o.Kind)
	return policy.Surrogate(o, viewer, dominated), nil
}

func viewerPrivileges(viewer *model.Actor) []model.PrivilegeClass {
	if viewer == nil {
		return nil
	}
	return viewer.Privileges
}
