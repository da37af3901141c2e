package factory

import (
	"testing"

	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateObject_DataSubtypeAndOwnerAndPrivileges(t *testing.T) {
	engine := kernel.NewMemoryEngine()

	require.NoError(t, engine.CreateNode(&kernel.Node{
		ID: "alice", Labels: []string{"Actor"},
		Properties: map[string]any{"aid": "alice", "name": "Alice"},
	}))
	require.NoError(t, engine.CreateNode(&kernel.Node{
		ID: "ADMIN", Labels: []string{"PrivilegeClass"},
		Properties: map[string]any{"pid": "ADMIN", "name": "ADMIN"},
	}))
	require.NoError(t, engine.CreateNode(&kernel.Node{
		ID: "O1", Labels: []string{"Provenance"},
		Properties: map[string]any{
			"oid": "O1", "type": "data", "subtype": "file",
			"name": "widget", "created": int64(100),
			"metadata:project": "alpha",
		},
	}))
	require.NoError(t, engine.CreateEdge(&kernel.Edge{
		ID: "owns-1", StartNode: "alice", EndNode: "O1", Type: "owns",
	}))
	require.NoError(t, engine.CreateEdge(&kernel.Edge{
		ID: "ctrl-1", StartNode: "O1", EndNode: "ADMIN", Type: "controlledBy",
	}))

	node, err := engine.GetNode("O1")
	require.NoError(t, err)

	obj, err := HydrateObject(engine, node)
	require.NoError(t, err)

	assert.Equal(t, model.ObjectTypeData, obj.Kind.Type())
	sub, ok := obj.Kind.Subtype()
	assert.True(t, ok)
	assert.Equal(t, model.DataFile, sub)
	assert.Equal(t, "widget", obj.Name)
	assert.Equal(t, int64(100), obj.Created)
	assert.Equal(t, "alpha", obj.Metadata["project"])
	require.NotNil(t, obj.Owner)
	assert.Equal(t, "alice", obj.Owner.AID)
	require.Len(t, obj.Privileges, 1)
	assert.Equal(t, "ADMIN", obj.Privileges[0].Name)
}

func TestHydrateObject_FallsBackToGenericData(t *testing.T) {
	engine := kernel.NewMemoryEngine()
	require.NoError(t, engine.CreateNode(&kernel.Node{
		ID: "O2", Labels: []string{"Provenance"},
		Properties: map[string]any{"oid": "O2", "type": "data", "subtype": "nonsense", "name": "x", "created": int64(1)},
	}))
	node, _ := engine.GetNode("O2")

	obj, err := HydrateObject(engine, node)
	require.NoError(t, err)

	sub, ok := obj.Kind.Subtype()
	assert.True(t, ok)
	assert.Equal(t, model.DataGeneric, sub)
}

func TestHydrateEdge_WorkflowProperty(t *testing.T) {
	edge := &kernel.Edge{
		ID: "e1", StartNode: "O1", EndNode: "O2", Type: "input-to",
		Properties: map[string]any{"workflow": "wf-1"},
	}
	plusEdge := HydrateEdge(edge)
	assert.Equal(t, model.EdgeInputTo, plusEdge.Type)
	require.NotNil(t, plusEdge.Workflow)
	assert.Equal(t, "wf-1", *plusEdge.Workflow)
}

func TestHydrateNPE(t *testing.T) {
	edge := &kernel.Edge{
		ID: "npe-e1", StartNode: "O2", EndNode: "abc123", Type: "NPE",
		Properties: map[string]any{"npeid": "npe1", "type": "md5", "created": int64(5)},
	}
	npe := HydrateNPE(edge)
	assert.Equal(t, "npe1", npe.NPEID)
	assert.Equal(t, "md5", npe.Type)
	assert.Equal(t, int64(5), npe.Created)
}

func TestEndpointIsPLUSObject(t *testing.T) {
	provenanceNode := &kernel.Node{Labels: []string{"Provenance"}}
	npidNode := &kernel.Node{Labels: []string{"NonProvenance"}}
	assert.True(t, EndpointIsPLUSObject(provenanceNode))
	assert.False(t, EndpointIsPLUSObject(npidNode))
}
