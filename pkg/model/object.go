package model

// DataSubtype refines ObjectType Data into its concrete shape, per the
// tagged-variant restatement of the source's string dispatch (spec.md §9).
type DataSubtype string

const (
	DataGeneric    DataSubtype = "generic"
	DataString     DataSubtype = "string"
	DataFile       DataSubtype = "file"
	DataFileImage  DataSubtype = "file-image"
	DataURL        DataSubtype = "url"
	DataRelational DataSubtype = "relational"
	DataTaint      DataSubtype = "taint"
)

// ObjectType is the first-class `type` attribute of a PLUSObject.
type ObjectType string

const (
	ObjectTypeData       ObjectType = "data"
	ObjectTypeActivity   ObjectType = "activity"
	ObjectTypeWorkflow   ObjectType = "workflow"
	ObjectTypeInvocation ObjectType = "invocation"
)

// ObjectKind is the tagged-variant restatement of the source's
// type/subtype string dispatch: ObjectKind ::= Data(DataSubtype) |
// Activity | Workflow | Invocation. The factory (pkg/factory) maps stored
// (type, subtype) property strings into this variant; nothing downstream
// re-dispatches on raw strings.
type ObjectKind struct {
	objType ObjectType
	subtype DataSubtype // only meaningful when objType == ObjectTypeData
}

// NewDataKind constructs the Data(subtype) variant.
func NewDataKind(subtype DataSubtype) ObjectKind {
	return ObjectKind{objType: ObjectTypeData, subtype: subtype}
}

// NewActivityKind, NewWorkflowKind, NewInvocationKind construct the three
// non-parameterized variants.
func NewActivityKind() ObjectKind   { return ObjectKind{objType: ObjectTypeActivity} }
func NewWorkflowKind() ObjectKind   { return ObjectKind{objType: ObjectTypeWorkflow} }
func NewInvocationKind() ObjectKind { return ObjectKind{objType: ObjectTypeInvocation} }

// Type returns the underlying ObjectType tag.
func (k ObjectKind) Type() ObjectType { return k.objType }

// Subtype returns the DataSubtype and whether k is a Data variant.
func (k ObjectKind) Subtype() (DataSubtype, bool) {
	if k.objType != ObjectTypeData {
		return "", false
	}
	return k.subtype, true
}

// StorageTypeSubtype returns the storage-facing (type, subtype) pair exactly as the
// factory would write/read them as node properties.
func (k ObjectKind) StorageTypeSubtype() (string, string) {
	switch k.objType {
	case ObjectTypeData:
		return string(ObjectTypeData), string(k.subtype)
	default:
		return string(k.objType), string(k.objType)
	}
}

// String renders the variant as a fully-qualified name string — the Go
// realization of "class/type descriptor → its fully-qualified name
// string" (spec.md §4.1), consumed by pkg/codec when encoding a type
// descriptor value.
func (k ObjectKind) String() string {
	typ, sub := k.StorageTypeSubtype()
	if k.objType == ObjectTypeData {
		return "model.ObjectKind.Data." + sub
	}
	return "model.ObjectKind." + typ
}

// PLUSObject is a provenance node: the central entity of the data model.
type PLUSObject struct {
	OID       string         `json:"oid"`
	Kind      ObjectKind     `json:"-"`
	Name      string         `json:"name"`
	Created   int64          `json:"created"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Heritable bool           `json:"heritable,omitempty"`

	Owner      *Actor           `json:"owner,omitempty"`
	Privileges []PrivilegeClass `json:"privileges,omitempty"`
}

// Surrogate is a redacted or synthesized substitute view of a PLUSObject,
// returned to a viewer who lacks full clearance. It carries only the
// subset of fields the registered SurrogatePolicy chose to expose.
type Surrogate struct {
	OID      string     `json:"oid"`
	Kind     ObjectKind `json:"-"`
	Name     string     `json:"name,omitempty"`
	Redacted bool       `json:"redacted"`
}
