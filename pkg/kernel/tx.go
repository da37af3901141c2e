package kernel

import "fmt"

// Tx is the common surface both *Transaction (MemoryEngine) and
// *BadgerTransaction (BadgerEngine) implement. Higher layers
// (pkg/graphstore, pkg/client) are written against this interface and
// Engine so they never need to know which backend they're driving.
type Tx interface {
	CreateNode(node *Node) error
	GetNode(id NodeID) (*Node, error)
	UpdateNode(node *Node) error
	DeleteNode(id NodeID) error

	CreateEdge(edge *Edge) error
	DeleteEdge(id EdgeID) error

	Commit() error
	Rollback() error

	SetMetadata(map[string]interface{}) error
}

var (
	_ Tx = (*Transaction)(nil)
	_ Tx = (*BadgerTransaction)(nil)
)

// BeginTx opens a transaction against engine regardless of its concrete
// backend, returning the common Tx interface.
func BeginTx(engine Engine, readOnly bool) (Tx, error) {
	switch e := engine.(type) {
	case *MemoryEngine:
		return e.BeginTransaction(readOnly), nil
	case *BadgerEngine:
		return e.BeginTransaction(readOnly)
	default:
		return nil, fmt.Errorf("kernel: BeginTx: unsupported engine type %T", engine)
	}
}
