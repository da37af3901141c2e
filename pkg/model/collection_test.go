package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineageDAG_AddNodeDedup(t *testing.T) {
	dag := NewLineageDAG("O1")
	dag.AddNode(&PLUSObject{OID: "O1", Name: "first"})
	dag.AddNode(&PLUSObject{OID: "O1", Name: "duplicate"})
	dag.AddNode(&PLUSObject{OID: "O2", Name: "second"})

	assert.Equal(t, 2, dag.NodeCount())
	n, ok := dag.Node("O1")
	assert.True(t, ok)
	assert.Equal(t, "first", n.Name)
}

func TestLineageDAG_AddEdgeDedup(t *testing.T) {
	dag := NewLineageDAG("O1")
	dag.AddEdge(&PLUSEdge{ID: "e1", From: "O1", To: "O2"})
	dag.AddEdge(&PLUSEdge{ID: "e1", From: "O1", To: "O2"})
	assert.Equal(t, 1, dag.EdgeCount())
}

func TestLineageDAG_Tags(t *testing.T) {
	dag := NewLineageDAG("O1")
	dag.Tag("O1", "head", true)
	dag.Tag("O3", "foot", true)

	v, ok := dag.TagValue("O1", "head")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = dag.TagValue("O2", "head")
	assert.False(t, ok)
}

func TestLineageDAG_NPEAndNPIDTracking(t *testing.T) {
	dag := NewLineageDAG("O1")
	dag.AddNPE(&NPE{NPEID: "npe1", From: "O2", To: "abc123", Type: "md5"}, &NPID{NPID: "abc123"})
	dag.AddNPE(&NPE{NPEID: "npe1", From: "O2", To: "abc123", Type: "md5"}, &NPID{NPID: "abc123"})

	assert.Equal(t, 1, dag.NPECount())
	assert.Len(t, dag.NPIDs(), 1)
}
