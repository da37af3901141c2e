package codec

import (
	"fmt"
	"reflect"

	"github.com/orneryd/plus/pkg/convert"
	"github.com/orneryd/plus/pkg/model"
)

// stringer is satisfied by any type descriptor that names itself, e.g.
// model.ObjectKind.
type stringer interface {
	String() string
}

// Encode converts a domain attribute value to its storage-safe form,
// applied recursively:
//
//	nil                    -> ""
//	model.PrivilegeSet     -> []string of sorted class names
//	*model.Actor           -> its aid
//	stringer (type/kind)   -> its fully-qualified name string
//	slice/array            -> []string, each element encoded then rendered
//	scalar (string/int/.../bool) -> unchanged
func Encode(v any) any {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case model.PrivilegeSet:
		return val.Names()
	case []model.PrivilegeClass:
		return model.PrivilegeSet(val).Names()
	case *model.Actor:
		if val == nil {
			return ""
		}
		return val.AID
	case model.Actor:
		return val.AID
	case stringer:
		return val.String()
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = toStorageString(Encode(rv.Index(i).Interface()))
		}
		return out
	}

	return v
}

// toStorageString renders an already-encoded scalar as a string, the
// final step "array of X" encoding needs per element.
func toStorageString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// EncodeMap applies Encode to every value in props, additionally
// namespacing keys present in metadata with the "metadata:" prefix so
// user-supplied metadata can never collide with first-class properties.
func EncodeMap(props map[string]any, metadata map[string]any) map[string]any {
	out := make(map[string]any, len(props)+len(metadata))
	for k, v := range props {
		out[k] = Encode(v)
	}
	for k, v := range metadata {
		out[MetadataKey(k)] = Encode(v)
	}
	return out
}

// Decode converts a stored value back toward a Go scalar, coercing
// numeric types via pkg/convert's tolerant ToFloat64/ToInt64 helpers
// (adapted into this scalar path per spec.md §4.1) and collapsing
// []interface{} into []string for KindStringSlice.
func Decode(v any, hint Kind) any {
	switch hint {
	case KindInt:
		if i, ok := convert.ToInt64(v); ok {
			return i
		}
		return int64(0)
	case KindFloat:
		if f, ok := convert.ToFloat64(v); ok {
			return f
		}
		return float64(0)
	case KindBool:
		return decodeBool(v)
	case KindStringSlice:
		return decodeStringSlice(v)
	case KindString:
		fallthrough
	default:
		if v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
}

func decodeBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func decodeStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, toStorageString(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{toStorageString(s)}
	}
}

// DecodeMap strips the "metadata:" prefix from keys and splits props into
// (firstClass, metadata) maps, the inverse of EncodeMap's namespacing.
func DecodeMap(stored map[string]any) (firstClass map[string]any, metadata map[string]any) {
	firstClass = map[string]any{}
	metadata = map[string]any{}
	for k, v := range stored {
		if IsMetadataKey(k) {
			metadata[StripMetadataPrefix(k)] = v
		} else {
			firstClass[k] = v
		}
	}
	return firstClass, metadata
}
