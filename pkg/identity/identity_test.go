package identity

import (
	"testing"

	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *graphstore.GraphStore {
	t.Helper()
	gs := graphstore.New(kernel.NewMemoryEngine())
	require.NoError(t, gs.Bootstrap())
	return gs
}

func TestCreateActorAndAuthenticate(t *testing.T) {
	store := newTestStore(t)

	actor, err := CreateActor(store, "alice", "correct-horse-battery", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, actor.AID)
	assert.NotEqual(t, "correct-horse-battery", actor.PasswordHash)

	authenticated, err := Authenticate(store, "alice", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, actor.AID, authenticated.AID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	store := newTestStore(t)
	_, err := CreateActor(store, "alice", "correct-horse-battery", nil)
	require.NoError(t, err)

	_, err = Authenticate(store, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownActor(t *testing.T) {
	store := newTestStore(t)
	_, err := Authenticate(store, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateActor_RejectsShortPassword(t *testing.T) {
	store := newTestStore(t)
	_, err := CreateActor(store, "bob", "short", nil)
	assert.Error(t, err)
}
