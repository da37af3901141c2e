// Package identity provides actor credential management: creating an
// Actor with a bcrypt-hashed password and authenticating against the
// stored hash. It is a deliberately small slice of what a full account
// system would carry — no sessions, no tokens, no roles — since spec.md's
// authorization model is the privilege lattice (pkg/privilege), not an
// independent RBAC layer.
package identity

import (
	"errors"
	"fmt"

	"github.com/orneryd/plus/pkg/factory"
	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate when the name does
// not resolve to an actor or the password does not match its hash. The
// two cases are deliberately indistinguishable to a caller.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

const defaultBcryptCost = bcrypt.DefaultCost

// CreateActor hashes password with bcrypt and stores a new
// model.ActorUser-typed actor under name. Privileges, if any, are linked
// by name; graphstore.StoreActor creates any PrivilegeClass node that is
// not already stored.
func CreateActor(store *graphstore.GraphStore, name, password string, privileges []model.PrivilegeClass) (*model.Actor, error) {
	if name == "" {
		return nil, fmt.Errorf("identity: name must not be empty")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("identity: password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hashing password: %w", err)
	}

	actor := &model.Actor{
		AID:          model.NewOID(),
		Name:         name,
		Type:         model.ActorUser,
		PasswordHash: string(hash),
		Privileges:   privileges,
	}
	return store.StoreActor(actor)
}

// Authenticate resolves name to a stored actor and compares password
// against its bcrypt hash, returning ErrInvalidCredentials on any
// mismatch or lookup failure.
func Authenticate(store *graphstore.GraphStore, name, password string) (*model.Actor, error) {
	node, err := store.Engine().GetNodeByProperty("Actor", "name", name)
	if err != nil {
		if errors.Is(err, kernel.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity: looking up %q: %w", name, err)
	}

	actor := factory.HydrateActor(node)
	if actor.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return actor, nil
}
