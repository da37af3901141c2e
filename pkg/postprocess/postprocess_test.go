package postprocess

import (
	"testing"

	"github.com/orneryd/plus/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(oid string, subtype model.DataSubtype) *model.PLUSObject {
	return &model.PLUSObject{OID: oid, Kind: model.NewDataKind(subtype), Name: oid}
}

func TestPropagateTaint_MarksDownstreamDescendants(t *testing.T) {
	dag := model.NewLineageDAG("O2")
	taint := obj("T1", model.DataTaint)
	o1 := obj("O1", model.DataGeneric)
	o2 := obj("O2", model.DataGeneric)
	o3 := obj("O3", model.DataGeneric)
	for _, n := range []*model.PLUSObject{taint, o1, o2, o3} {
		dag.AddNode(n)
	}
	dag.AddEdge(&model.PLUSEdge{ID: "e1", From: "T1", To: "O1", Type: model.EdgeMarks})
	dag.AddEdge(&model.PLUSEdge{ID: "e2", From: "O1", To: "O2", Type: model.EdgeInputTo})
	dag.AddEdge(&model.PLUSEdge{ID: "e3", From: "O2", To: "O3", Type: model.EdgeGenerated})

	PropagateTaint(dag)

	for _, oid := range []string{"O1", "O2", "O3"} {
		v, ok := dag.TagValue(oid, "tainted")
		require.True(t, ok, "expected %s to be tagged tainted", oid)
		assert.Equal(t, true, v)
	}
	_, ok := dag.TagValue("T1", "tainted")
	assert.False(t, ok, "taint source itself is not tagged tainted")
}

func TestPropagateTaint_NoTaintSourceIsNoop(t *testing.T) {
	dag := model.NewLineageDAG("O1")
	dag.AddNode(obj("O1", model.DataGeneric))
	PropagateTaint(dag)
	_, ok := dag.TagValue("O1", "tainted")
	assert.False(t, ok)
}

func TestTagHeadsAndFoots(t *testing.T) {
	dag := model.NewLineageDAG("O2")
	o1, o2, o3 := obj("O1", model.DataGeneric), obj("O2", model.DataGeneric), obj("O3", model.DataGeneric)
	for _, n := range []*model.PLUSObject{o1, o2, o3} {
		dag.AddNode(n)
	}
	dag.AddEdge(&model.PLUSEdge{ID: "e1", From: "O1", To: "O2", Type: model.EdgeInputTo})
	dag.AddEdge(&model.PLUSEdge{ID: "e2", From: "O2", To: "O3", Type: model.EdgeGenerated})

	TagHeadsAndFoots(dag)

	head, _ := dag.TagValue("O1", "head")
	assert.Equal(t, true, head)
	_, hasHead := dag.TagValue("O2", "head")
	assert.False(t, hasHead)
	foot, _ := dag.TagValue("O3", "foot")
	assert.Equal(t, true, foot)
}

func TestTagDanglers_MarksSurvivingEndpoint(t *testing.T) {
	dag := model.NewLineageDAG("O1")
	dag.AddNode(obj("O1", model.DataGeneric))
	dag.AddEdge(&model.PLUSEdge{ID: "e1", From: "O1", To: "MISSING", Type: model.EdgeInputTo})

	TagDanglers(dag)

	v, ok := dag.TagValue("O1", "more-available")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestDrawInferredEdges_ConnectsAcrossRedactedIntermediate(t *testing.T) {
	dag := model.NewLineageDAG("O1")
	o1, o3 := obj("O1", model.DataGeneric), obj("O3", model.DataGeneric)
	dag.AddNode(o1)
	dag.AddNode(o3)
	dag.AddEdge(&model.PLUSEdge{ID: "e1", From: "O1", To: "REDACTED", Type: model.EdgeInputTo})
	dag.AddEdge(&model.PLUSEdge{ID: "e2", From: "REDACTED", To: "O3", Type: model.EdgeGenerated})

	DrawInferredEdges(dag)

	var found bool
	for _, e := range dag.Edges() {
		if e.From == "O1" && e.To == "O3" && e.Type == model.EdgeUnspecified {
			found = true
		}
	}
	assert.True(t, found, "expected an inferred unspecified edge between O1 and O3")
}

func TestFingerprint_CountsAndElapsed(t *testing.T) {
	dag := model.NewLineageDAG("O1")
	dag.AddNode(obj("O1", model.DataGeneric))
	dag.AddEdge(&model.PLUSEdge{ID: "e1", From: "O1", To: "MISSING", Type: model.EdgeInputTo})

	Run(dag)

	assert.Equal(t, 1, dag.Fingerprint.NodeCount)
	assert.Equal(t, 1, dag.Fingerprint.EdgeCount)
	assert.GreaterOrEqual(t, dag.Fingerprint.Elapsed.Nanoseconds(), int64(0))
}
