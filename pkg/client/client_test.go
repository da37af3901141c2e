package client

import (
	"context"
	"testing"

	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *graphstore.GraphStore) {
	t.Helper()
	gs := graphstore.New(kernel.NewMemoryEngine())
	require.NoError(t, gs.Bootstrap())
	return New(gs), gs
}

func adminActor() *model.Actor {
	return &model.Actor{AID: model.NewOID(), Name: "alice", Type: model.ActorUser,
		Privileges: []model.PrivilegeClass{{Name: model.PrivilegeAdmin}}}
}

func TestReport_PersistsCollection(t *testing.T) {
	c, _ := newTestClient(t)
	actor := adminActor()
	o1 := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewDataKind(model.DataGeneric), Name: "O1", Owner: actor}

	n, err := c.Report(actor, &model.ProvenanceCollection{
		Actors:  []*model.Actor{actor},
		Objects: []*model.PLUSObject{o1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, c.Exists(o1.OID))
}

func TestReport_NilCollectionIsInvalidArgument(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Report(adminActor(), nil)
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}

func TestGetSingleNode_RedactsFromUnprivilegedViewer(t *testing.T) {
	c, gs := newTestClient(t)
	owner := adminActor()
	secret := &model.PLUSObject{
		OID: model.NewOID(), Kind: model.NewDataKind(model.DataGeneric), Name: "secret", Owner: owner,
		Privileges: []model.PrivilegeClass{{Name: model.PrivilegeAdmin}},
	}
	_, err := gs.StoreObject(secret)
	require.NoError(t, err)

	viewer := &model.Actor{AID: model.NewOID(), Name: "bob", Type: model.ActorUser,
		Privileges: []model.PrivilegeClass{{Name: model.PrivilegePublic}}}

	_, err = c.GetSingleNode(viewer, secret.OID)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetSingleNode_NotFound(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.GetSingleNode(adminActor(), "missing")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSearch_MatchesByName(t *testing.T) {
	c, gs := newTestClient(t)
	actor := adminActor()
	o1 := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewDataKind(model.DataGeneric), Name: "widget-alpha", Owner: actor}
	_, err := gs.StoreObject(o1)
	require.NoError(t, err)

	results, err := c.Search(actor, "widget", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, o1.OID, results[0].OID)
}

func TestSearch_EmptyTermIsInvalidArgument(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Search(adminActor(), "  ", 10)
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}

func TestTaintAndRemoveTaints(t *testing.T) {
	c, gs := newTestClient(t)
	actor := adminActor()
	o1 := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewDataKind(model.DataGeneric), Name: "O1", Owner: actor}
	_, err := gs.StoreObject(o1)
	require.NoError(t, err)

	taint, err := c.Taint(actor, o1.OID, "looks suspicious")
	require.NoError(t, err)
	assert.True(t, c.Exists(taint.OID))

	removed, err := c.RemoveTaints(actor, o1.OID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, c.Exists(taint.OID))
}

func TestTaint_UnknownObjectIsNotFound(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Taint(adminActor(), "missing", "desc")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDominates_AdminOverPublic(t *testing.T) {
	c, _ := newTestClient(t)
	ok, err := c.Dominates(model.PrivilegeAdmin, model.PrivilegePublic)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetActors_ReturnsBuiltins(t *testing.T) {
	c, _ := newTestClient(t)
	actors, err := c.GetActors(10)
	require.NoError(t, err)
	assert.NotEmpty(t, actors)
}

func TestGetGraph_TraversesAndPostProcesses(t *testing.T) {
	c, gs := newTestClient(t)
	actor := adminActor()
	o1 := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewDataKind(model.DataGeneric), Name: "O1", Owner: actor}
	o2 := &model.PLUSObject{OID: model.NewOID(), Kind: model.NewActivityKind(), Name: "O2", Owner: actor}
	require.NoError(t, storeAll(gs, o1, o2))
	require.NoError(t, gs.StoreEdge(&model.PLUSEdge{From: o1.OID, To: o2.OID, Type: model.EdgeInputTo}))

	dag, err := c.GetGraph(context.Background(), actor, o1.OID, model.DefaultTraversalSettings())
	require.NoError(t, err)
	assert.True(t, dag.HasNode(o1.OID))
	assert.True(t, dag.HasNode(o2.OID))
	assert.GreaterOrEqual(t, dag.Fingerprint.NodeCount, 2)
}

func TestGetGraph_EmptyOIDIsInvalidArgument(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.GetGraph(context.Background(), adminActor(), "", model.DefaultTraversalSettings())
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}

func storeAll(gs *graphstore.GraphStore, objs ...*model.PLUSObject) error {
	for _, o := range objs {
		if _, err := gs.StoreObject(o); err != nil {
			return err
		}
	}
	return nil
}
