// Package codec converts domain attribute values to and from the
// storage-safe encoding the graph kernel's property maps accept, per
// spec.md §4.1: nil collapses to the empty string, iterables become
// string arrays, privilege sets become sorted class-name arrays, type
// descriptors become their fully-qualified name string, actors become
// their aid, and every other scalar passes through unchanged.
package codec

// Kind is a decode-side type hint: Decode doesn't try to infer the
// target shape from the stored value alone (a stored empty string is
// ambiguous between "was nil" and "was an actual empty string"), so
// callers state what they expect back.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStringSlice
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindStringSlice:
		return "stringSlice"
	default:
		return "unknown"
	}
}
