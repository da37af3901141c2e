package codec

import (
	"testing"

	"github.com/orneryd/plus/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestEncode_Nil(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}

func TestEncode_ScalarsPassThrough(t *testing.T) {
	assert.Equal(t, "hello", Encode("hello"))
	assert.Equal(t, 42, Encode(42))
	assert.Equal(t, true, Encode(true))
	assert.Equal(t, 3.14, Encode(3.14))
}

func TestEncode_PrivilegeSetSortedNames(t *testing.T) {
	set := model.PrivilegeSet{
		{PID: "p1", Name: "PUBLIC"},
		{PID: "p2", Name: "ADMIN"},
	}
	assert.Equal(t, []string{"ADMIN", "PUBLIC"}, Encode(set))
}

func TestEncode_ActorToAID(t *testing.T) {
	actor := &model.Actor{AID: "aid-123", Name: "alice"}
	assert.Equal(t, "aid-123", Encode(actor))
}

func TestEncode_NilActorPointer(t *testing.T) {
	var actor *model.Actor
	assert.Equal(t, "", Encode(actor))
}

func TestEncode_ObjectKindToFullyQualifiedName(t *testing.T) {
	kind := model.NewDataKind(model.DataTaint)
	assert.Equal(t, "model.ObjectKind.Data.taint", Encode(kind))
}

func TestEncode_IterableToStringArray(t *testing.T) {
	result := Encode([]int{1, 2, 3})
	assert.Equal(t, []string{"1", "2", "3"}, result)
}

func TestDecode_IntCoercion(t *testing.T) {
	assert.Equal(t, int64(42), Decode("42", KindInt))
	assert.Equal(t, int64(42), Decode(42, KindInt))
}

func TestDecode_FloatCoercion(t *testing.T) {
	assert.Equal(t, 3.5, Decode("3.5", KindFloat))
}

func TestDecode_BoolCoercion(t *testing.T) {
	assert.Equal(t, true, Decode("true", KindBool))
	assert.Equal(t, false, Decode("false", KindBool))
	assert.Equal(t, true, Decode(true, KindBool))
}

func TestDecode_StringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Decode([]any{"a", "b"}, KindStringSlice))
	assert.Equal(t, []string{"a", "b"}, Decode([]string{"a", "b"}, KindStringSlice))
}

func TestMetadataKeyRoundTrip(t *testing.T) {
	key := MetadataKey("project")
	assert.Equal(t, "metadata:project", key)
	assert.True(t, IsMetadataKey(key))
	assert.Equal(t, "project", StripMetadataPrefix(key))
}

func TestEncodeDecodeMap_MetadataNamespacing(t *testing.T) {
	props := map[string]any{"name": "widget"}
	metadata := map[string]any{"project": "alpha"}

	stored := EncodeMap(props, metadata)
	assert.Equal(t, "widget", stored["name"])
	assert.Equal(t, "alpha", stored["metadata:project"])

	firstClass, restoredMetadata := DecodeMap(stored)
	assert.Equal(t, "widget", firstClass["name"])
	assert.Equal(t, "alpha", restoredMetadata["project"])
}
