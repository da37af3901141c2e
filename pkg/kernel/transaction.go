// This file implements transaction semantics for the graph kernel,
// giving the higher layers (pkg/graphstore, pkg/client) an atomic unit
// of work with read-your-writes visibility.
//
// # Transaction Semantics
//
// Transactions provide:
//   - Atomicity: All operations commit together or none do
//   - Isolation: Changes are invisible to other transactions until commit
//   - Read-your-writes: A transaction sees its own buffered changes
//
// # Implementation Strategy
//
//  1. BEGIN: Create transaction, record starting state
//  2. Operations: Buffer all writes, track old values for rollback
//  3. COMMIT: Apply all buffered operations atomically (skipped for
//     read-only transactions, which never mutate the engine)
//  4. ROLLBACK: Discard buffer
package kernel

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Transaction errors
var (
	ErrNoTransaction       = errors.New("no active transaction")
	ErrTransactionActive   = errors.New("transaction already active")
	ErrTransactionClosed   = errors.New("transaction already closed")
	ErrTransactionRollback = errors.New("transaction rolled back")
	ErrReadOnlyTransaction = errors.New("write attempted on read-only transaction")
)

// TransactionStatus represents the current state of a transaction.
type TransactionStatus string

const (
	TxStatusActive     TransactionStatus = "active"
	TxStatusCommitted  TransactionStatus = "committed"
	TxStatusRolledBack TransactionStatus = "rolled_back"
)

// OperationType represents the type of operation in a transaction.
type OperationType string

const (
	OpCreateNode OperationType = "create_node"
	OpUpdateNode OperationType = "update_node"
	OpDeleteNode OperationType = "delete_node"
	OpCreateEdge OperationType = "create_edge"
	OpUpdateEdge OperationType = "update_edge"
	OpDeleteEdge OperationType = "delete_edge"
)

// Operation represents a single buffered operation within a transaction.
type Operation struct {
	Type      OperationType
	Timestamp time.Time

	NodeID  NodeID
	Node    *Node
	OldNode *Node

	EdgeID  EdgeID
	Edge    *Edge
	OldEdge *Edge
}

// Transaction represents an atomic unit of work against a MemoryEngine.
//
// All operations within a transaction are buffered and only applied
// to the underlying storage on commit. If rollback is called, all
// buffered operations are discarded.
//
// A ReadOnly transaction never buffers mutations; its Commit call is a
// no-op that always succeeds, matching the spec's requirement that
// read-only queries never fail because of a commit-time conflict.
type Transaction struct {
	mu sync.Mutex

	ID        string
	StartTime time.Time
	Status    TransactionStatus
	ReadOnly  bool

	operations []Operation

	engine *MemoryEngine

	pendingNodes map[NodeID]*Node
	pendingEdges map[EdgeID]*Edge
	deletedNodes map[NodeID]struct{}
	deletedEdges map[EdgeID]struct{}

	// Metadata is caller-supplied context (e.g. the acting actor's AID)
	// logged on commit for audit purposes.
	Metadata map[string]interface{}
}

// newTransaction creates a new transaction bound to a MemoryEngine.
// readOnly transactions reject every mutating call with ErrReadOnlyTransaction.
func newTransaction(engine *MemoryEngine, readOnly bool) *Transaction {
	return &Transaction{
		ID:           generateTxID(),
		StartTime:    time.Now(),
		Status:       TxStatusActive,
		ReadOnly:     readOnly,
		engine:       engine,
		operations:   make([]Operation, 0),
		pendingNodes: make(map[NodeID]*Node),
		pendingEdges: make(map[EdgeID]*Edge),
		deletedNodes: make(map[NodeID]struct{}),
		deletedEdges: make(map[EdgeID]struct{}),
		Metadata:     make(map[string]interface{}),
	}
}

// generateTxID generates a unique transaction ID.
func generateTxID() string {
	return "tx-" + time.Now().Format("20060102150405.000000")
}

// IsActive returns true if the transaction is still active.
func (tx *Transaction) IsActive() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.Status == TxStatusActive
}

// CreateNode buffers a node creation operation.
func (tx *Transaction) CreateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	if _, exists := tx.pendingNodes[node.ID]; exists {
		return ErrAlreadyExists
	}
	if _, deleted := tx.deletedNodes[node.ID]; !deleted {
		tx.engine.mu.RLock()
		_, exists := tx.engine.nodes[node.ID]
		tx.engine.mu.RUnlock()
		if exists {
			return ErrAlreadyExists
		}
	}

	nodeCopy := copyNode(node)
	tx.pendingNodes[node.ID] = nodeCopy
	delete(tx.deletedNodes, node.ID)

	tx.operations = append(tx.operations, Operation{
		Type:      OpCreateNode,
		Timestamp: time.Now(),
		NodeID:    node.ID,
		Node:      nodeCopy,
	})

	return nil
}

// UpdateNode buffers a node update operation.
func (tx *Transaction) UpdateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	var oldNode *Node

	if pending, exists := tx.pendingNodes[node.ID]; exists {
		oldNode = copyNode(pending)
	} else {
		tx.engine.mu.RLock()
		existing, exists := tx.engine.nodes[node.ID]
		tx.engine.mu.RUnlock()

		if !exists {
			return ErrNotFound
		}
		oldNode = copyNode(existing)
	}

	nodeCopy := copyNode(node)
	tx.pendingNodes[node.ID] = nodeCopy

	tx.operations = append(tx.operations, Operation{
		Type:      OpUpdateNode,
		Timestamp: time.Now(),
		NodeID:    node.ID,
		Node:      nodeCopy,
		OldNode:   oldNode,
	})

	return nil
}

// DeleteNode buffers a node deletion operation.
func (tx *Transaction) DeleteNode(nodeID NodeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	var oldNode *Node

	if pending, exists := tx.pendingNodes[nodeID]; exists {
		oldNode = copyNode(pending)
		delete(tx.pendingNodes, nodeID)
	} else {
		tx.engine.mu.RLock()
		existing, exists := tx.engine.nodes[nodeID]
		tx.engine.mu.RUnlock()

		if !exists {
			return ErrNotFound
		}
		oldNode = copyNode(existing)
	}

	tx.deletedNodes[nodeID] = struct{}{}

	tx.operations = append(tx.operations, Operation{
		Type:      OpDeleteNode,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		OldNode:   oldNode,
	})

	return nil
}

// CreateEdge buffers an edge creation operation.
func (tx *Transaction) CreateEdge(edge *Edge) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	if _, exists := tx.pendingEdges[edge.ID]; exists {
		return ErrAlreadyExists
	}
	if _, deleted := tx.deletedEdges[edge.ID]; !deleted {
		tx.engine.mu.RLock()
		_, exists := tx.engine.edges[edge.ID]
		tx.engine.mu.RUnlock()
		if exists {
			return ErrAlreadyExists
		}
	}

	if !tx.nodeExists(edge.StartNode) {
		return ErrInvalidEdge
	}
	if !tx.nodeExists(edge.EndNode) {
		return ErrInvalidEdge
	}

	edgeCopy := copyEdge(edge)
	tx.pendingEdges[edge.ID] = edgeCopy
	delete(tx.deletedEdges, edge.ID)

	tx.operations = append(tx.operations, Operation{
		Type:      OpCreateEdge,
		Timestamp: time.Now(),
		EdgeID:    edge.ID,
		Edge:      edgeCopy,
	})

	return nil
}

// DeleteEdge buffers an edge deletion operation.
func (tx *Transaction) DeleteEdge(edgeID EdgeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	var oldEdge *Edge

	if pending, exists := tx.pendingEdges[edgeID]; exists {
		oldEdge = copyEdge(pending)
		delete(tx.pendingEdges, edgeID)
	} else {
		tx.engine.mu.RLock()
		existing, exists := tx.engine.edges[edgeID]
		tx.engine.mu.RUnlock()

		if !exists {
			return ErrNotFound
		}
		oldEdge = copyEdge(existing)
	}

	tx.deletedEdges[edgeID] = struct{}{}

	tx.operations = append(tx.operations, Operation{
		Type:      OpDeleteEdge,
		Timestamp: time.Now(),
		EdgeID:    edgeID,
		OldEdge:   oldEdge,
	})

	return nil
}

// nodeExists checks if a node exists in pending or storage.
// Must be called with tx.mu held.
func (tx *Transaction) nodeExists(nodeID NodeID) bool {
	if _, deleted := tx.deletedNodes[nodeID]; deleted {
		return false
	}
	if _, exists := tx.pendingNodes[nodeID]; exists {
		return true
	}

	tx.engine.mu.RLock()
	_, exists := tx.engine.nodes[nodeID]
	tx.engine.mu.RUnlock()

	return exists
}

// GetNode retrieves a node, checking pending changes first (read-your-writes).
func (tx *Transaction) GetNode(nodeID NodeID) (*Node, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return nil, ErrTransactionClosed
	}

	if _, deleted := tx.deletedNodes[nodeID]; deleted {
		return nil, ErrNotFound
	}

	if pending, exists := tx.pendingNodes[nodeID]; exists {
		return copyNode(pending), nil
	}

	tx.engine.mu.RLock()
	node, exists := tx.engine.nodes[nodeID]
	tx.engine.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	return copyNode(node), nil
}

// Commit applies all buffered operations to the storage engine atomically.
//
// A read-only transaction never buffered any operations, so Commit
// simply marks it committed without touching the engine at all: there
// is nothing to validate and nothing that can conflict.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}

	if tx.ReadOnly {
		tx.Status = TxStatusCommitted
		return nil
	}

	tx.engine.mu.Lock()
	defer tx.engine.mu.Unlock()

	for _, op := range tx.operations {
		switch op.Type {
		case OpCreateNode:
			if _, exists := tx.engine.nodes[op.NodeID]; exists {
				return ErrAlreadyExists
			}
		case OpCreateEdge:
			if _, exists := tx.engine.edges[op.EdgeID]; exists {
				return ErrAlreadyExists
			}
		}
	}

	if len(tx.Metadata) > 0 {
		log.Printf("[Transaction %s] committing with metadata: %v", tx.ID, tx.Metadata)
	}

	for _, op := range tx.operations {
		switch op.Type {
		case OpCreateNode:
			tx.engine.createNodeUnlocked(op.Node)
		case OpUpdateNode:
			tx.engine.updateNodeUnlocked(op.Node)
		case OpDeleteNode:
			tx.engine.deleteNodeUnlocked(op.NodeID)
		case OpCreateEdge:
			tx.engine.createEdgeUnlocked(op.Edge)
		case OpDeleteEdge:
			tx.engine.deleteEdgeUnlocked(op.EdgeID)
		}
	}

	tx.Status = TxStatusCommitted
	return nil
}

// Rollback discards all buffered operations.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}

	tx.operations = nil
	tx.pendingNodes = nil
	tx.pendingEdges = nil
	tx.deletedNodes = nil
	tx.deletedEdges = nil

	tx.Status = TxStatusRolledBack
	return nil
}

// OperationCount returns the number of buffered operations.
func (tx *Transaction) OperationCount() int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return len(tx.operations)
}

// SetMetadata sets transaction metadata for logging and debugging.
// Metadata is merged with any existing metadata; the total character
// count is limited to 2048 to keep the commit log line bounded.
func (tx *Transaction) SetMetadata(metadata map[string]interface{}) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}

	totalSize := 0
	for k, v := range metadata {
		totalSize += len(k)
		if v != nil {
			totalSize += len(fmt.Sprint(v))
		}
	}

	if totalSize > 2048 {
		return fmt.Errorf("transaction metadata too large: %d chars (max 2048)", totalSize)
	}

	if tx.Metadata == nil {
		tx.Metadata = make(map[string]interface{})
	}
	for k, v := range metadata {
		tx.Metadata[k] = v
	}

	return nil
}

// GetMetadata returns a copy of the transaction metadata.
func (tx *Transaction) GetMetadata() map[string]interface{} {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	result := make(map[string]interface{})
	for k, v := range tx.Metadata {
		result[k] = v
	}
	return result
}
