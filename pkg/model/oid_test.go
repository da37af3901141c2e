package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPLUSOID(t *testing.T) {
	oid := NewOID()
	assert.True(t, IsPLUSOID(oid))
	assert.True(t, IsPLUSOID("urn:plus:obj:not-really-a-uuid"))
	assert.False(t, IsPLUSOID("abc123"))
	assert.False(t, IsPLUSOID("https://example.com/data.csv"))
}

func TestNewOID_Unique(t *testing.T) {
	a := NewOID()
	b := NewOID()
	assert.NotEqual(t, a, b)
}

func TestPrivilegeSet_NamesSorted(t *testing.T) {
	set := PrivilegeSet{
		{PID: "p1", Name: "PUBLIC"},
		{PID: "p2", Name: "ADMIN"},
		{PID: "p3", Name: "EMERGENCY_LOW"},
	}
	assert.Equal(t, []string{"ADMIN", "EMERGENCY_LOW", "PUBLIC"}, set.Names())
}

func TestPrivilegeSet_Contains(t *testing.T) {
	set := PrivilegeSet{{PID: "p1", Name: "PUBLIC"}}
	assert.True(t, set.Contains("PUBLIC"))
	assert.False(t, set.Contains("ADMIN"))
}
