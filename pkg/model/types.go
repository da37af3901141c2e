// Package model defines the domain entities of the provenance graph:
// objects, actors, edges, non-provenance edges/nodes, privilege classes,
// and the in-memory collection types used to carry a lineage result back
// to a caller.
//
// These are plain data types with no storage dependency; pkg/factory
// populates them from pkg/kernel nodes/edges, and pkg/codec encodes them
// back down to storable property maps.
package model

// ActorType enumerates the three actor kinds named in the data model.
type ActorType string

const (
	ActorUser       ActorType = "user"
	ActorOpenIDUser ActorType = "openid-user"
	ActorGeneric    ActorType = "actor"
)

// Actor is a PLUSActor: an agent (user, system, service) that can own
// objects and act as a viewer in privilege checks.
type Actor struct {
	AID         string    `json:"aid"`
	Name        string    `json:"name"`
	Type        ActorType `json:"type"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`

	// PasswordHash is only ever populated by pkg/identity; it is never
	// written to the graph store as a node property.
	PasswordHash string `json:"-"`

	// Privileges is the actor's own clearance set, used as the viewer
	// side of dominance checks during the surrogate filter pass.
	Privileges []PrivilegeClass `json:"privileges,omitempty"`
}

// EdgeType enumerates the six provenance relationship types.
type EdgeType string

const (
	EdgeInputTo     EdgeType = "input-to"
	EdgeContributed EdgeType = "contributed"
	EdgeMarks       EdgeType = "marks"
	EdgeGenerated   EdgeType = "generated"
	EdgeTriggered   EdgeType = "triggered"
	EdgeUnspecified EdgeType = "unspecified"
)

// ProvenanceEdgeTypes lists every EdgeType eligible for lineage traversal
// (excludes the structural NPE/owns/controlledBy/dominates relationship
// types, which are graph-kernel plumbing, not lineage claims).
var ProvenanceEdgeTypes = []string{
	string(EdgeInputTo),
	string(EdgeContributed),
	string(EdgeMarks),
	string(EdgeGenerated),
	string(EdgeTriggered),
	string(EdgeUnspecified),
}

// PLUSEdge is a typed directed provenance relation between two PLUSObjects,
// identified by the tuple (From, To, Type, Workflow).
type PLUSEdge struct {
	ID       string   `json:"id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Type     EdgeType `json:"type"`
	Workflow *string  `json:"workflow,omitempty"`
}

// NPE is a NonProvenanceEdge: a typed relation linking a PLUSObject to an
// external identifier (or occasionally another PLUSObject) that is not
// itself a lineage claim.
type NPE struct {
	NPEID   string `json:"npeid"`
	From    string `json:"from"`
	To      string `json:"to"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
}

// NPID is a NonProvenanceNode: a leaf node representing an external
// identifier (hash, URL, database key) referenced from the graph via an
// NPE but carrying no provenance semantics of its own.
type NPID struct {
	NPID string `json:"npid"`
}

// PrivilegeClass is a named node in the privilege lattice.
type PrivilegeClass struct {
	PID  string `json:"pid"`
	Name string `json:"name"`
}

// Well-known privilege-class names bootstrapped per spec.md §4.3.
const (
	PrivilegeAdmin            = "ADMIN"
	PrivilegeNationalSecurity = "NATIONAL_SECURITY"
	PrivilegeEmergencyHigh    = "EMERGENCY_HIGH"
	PrivilegeEmergencyLow     = "EMERGENCY_LOW"
	PrivilegePrivateMedical   = "PRIVATE_MEDICAL"
	PrivilegePublic           = "PUBLIC"
)

// NumericLatticeLevels is the 10-level numeric chain L10 ⊲ L9 ⊲ … ⊲ L1
// bootstrapped alongside the named lattice.
var NumericLatticeLevels = []string{"L10", "L9", "L8", "L7", "L6", "L5", "L4", "L3", "L2", "L1"}

// Well-known bootstrap actor names.
const (
	ActorNameGod    = "GOD"
	ActorNamePublic = "PUBLIC"
)

// WellKnownWorkflowName and WellKnownUnknownActivityName identify the
// bootstrap workflow and activity objects by name (their OIDs are assigned
// at bootstrap time and recognized thereafter).
const (
	WellKnownWorkflowName        = "default-workflow"
	WellKnownUnknownActivityName = "unknown-activity"
)
