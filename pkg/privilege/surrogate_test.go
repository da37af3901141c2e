package privilege

import (
	"testing"

	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterForViewer_NoPrivilegesAlwaysVisible(t *testing.T) {
	engine := buildLattice(t)
	reg := NewRegistry()
	obj := &model.PLUSObject{OID: "O1", Kind: model.NewDataKind(model.DataGeneric), Name: "widget"}

	out, err := reg.FilterForViewer(engine, obj, nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "O1", out.OID)
}

func TestFilterForViewer_DominatedReturnsFullObject(t *testing.T) {
	engine := buildLattice(t)
	reg := NewRegistry()
	obj := &model.PLUSObject{
		OID: "O1", Kind: model.NewDataKind(model.DataGeneric), Name: "widget",
		Privileges: []model.PrivilegeClass{pc("PUBLIC")},
	}
	viewer := &model.Actor{AID: "alice", Privileges: []model.PrivilegeClass{pc("ADMIN")}}

	out, err := reg.FilterForViewer(engine, obj, viewer)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, obj, out)
}

func TestFilterForViewer_UndominatedGenericIsRedactedToNil(t *testing.T) {
	engine := buildLattice(t)
	reg := NewRegistry()
	obj := &model.PLUSObject{
		OID: "O1", Kind: model.NewDataKind(model.DataGeneric), Name: "secret",
		Privileges: []model.PrivilegeClass{pc("ADMIN")},
	}
	viewer := &model.Actor{AID: "bob", Privileges: []model.PrivilegeClass{pc("PUBLIC")}}

	out, err := reg.FilterForViewer(engine, obj, viewer)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFilterForViewer_UndominatedTaintGetsPartialView(t *testing.T) {
	engine := buildLattice(t)
	reg := NewRegistry()
	obj := &model.PLUSObject{
		OID: "T1", Kind: model.NewDataKind(model.DataTaint), Name: "taint-marker",
		Privileges: []model.PrivilegeClass{pc("ADMIN")},
		Metadata:   map[string]any{"reason": "suspected leak"},
	}
	viewer := &model.Actor{AID: "bob", Privileges: []model.PrivilegeClass{pc("PUBLIC")}}

	out, err := reg.FilterForViewer(engine, obj, viewer)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "T1", out.OID)
	assert.Equal(t, "taint-marker", out.Name)
	assert.Nil(t, out.Metadata)
}

func TestFilterForViewer_UnresolvableClassesAreNotDominated(t *testing.T) {
	engine := kernel.NewMemoryEngine()
	reg := NewRegistry()
	obj := &model.PLUSObject{
		OID: "O1", Kind: model.NewDataKind(model.DataGeneric),
		Privileges: []model.PrivilegeClass{{PID: "PID-OBJ", Name: "BROKEN"}},
	}
	viewer := &model.Actor{Privileges: []model.PrivilegeClass{{PID: "PID-VIEWER", Name: "VIEWER"}}}

	out, err := reg.FilterForViewer(engine, obj, viewer)
	require.NoError(t, err)
	assert.Nil(t, out)
}
