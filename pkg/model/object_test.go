package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKind_DataVariant(t *testing.T) {
	k := NewDataKind(DataFile)
	assert.Equal(t, ObjectTypeData, k.Type())

	sub, isData := k.Subtype()
	assert.True(t, isData)
	assert.Equal(t, DataFile, sub)

	typ, subStr := k.StorageTypeSubtype()
	assert.Equal(t, "data", typ)
	assert.Equal(t, "file", subStr)

	assert.Equal(t, "model.ObjectKind.Data.file", k.String())
}

func TestObjectKind_NonDataVariants(t *testing.T) {
	for _, tc := range []struct {
		kind ObjectKind
		want string
	}{
		{NewActivityKind(), "model.ObjectKind.activity"},
		{NewWorkflowKind(), "model.ObjectKind.workflow"},
		{NewInvocationKind(), "model.ObjectKind.invocation"},
	} {
		_, isData := tc.kind.Subtype()
		assert.False(t, isData)
		assert.Equal(t, tc.want, tc.kind.String())
	}
}
