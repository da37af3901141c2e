// BadgerTransaction wraps BadgerDB's native transaction with the same
// ReadOnly/constraint-validation semantics as Transaction (transaction.go),
// for callers running against a BadgerEngine instead of a MemoryEngine.
package kernel

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTransaction provides ACID guarantees on top of Badger's own
// transaction: atomicity and isolation come from badger.Txn directly,
// consistency is enforced by validating UNIQUE constraints before each
// write, and durability follows from Badger's WAL.
type BadgerTransaction struct {
	mu sync.Mutex

	ID        string
	StartTime time.Time
	Status    TransactionStatus
	ReadOnly  bool

	badgerTx *badger.Txn
	engine   *BadgerEngine

	pendingNodes map[NodeID]*Node
	pendingEdges map[EdgeID]*Edge
	deletedNodes map[NodeID]struct{}
	deletedEdges map[EdgeID]struct{}
	operations   []Operation

	Metadata map[string]interface{}
}

// BeginTransaction starts a new Badger-backed transaction. A read-only
// transaction still opens a Badger read-write txn (so GetNode sees
// read-your-writes for symmetry with Transaction) but rejects every
// mutating call with ErrReadOnlyTransaction and short-circuits Commit.
func (b *BadgerEngine) BeginTransaction(readOnly bool) (*BadgerTransaction, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrStorageClosed
	}

	return &BadgerTransaction{
		ID:           generateTxID(),
		StartTime:    time.Now(),
		Status:       TxStatusActive,
		ReadOnly:     readOnly,
		badgerTx:     b.db.NewTransaction(true),
		engine:       b,
		pendingNodes: make(map[NodeID]*Node),
		pendingEdges: make(map[EdgeID]*Edge),
		deletedNodes: make(map[NodeID]struct{}),
		deletedEdges: make(map[EdgeID]struct{}),
		operations:   make([]Operation, 0),
		Metadata:     make(map[string]interface{}),
	}, nil
}

// IsActive returns true if the transaction is still active.
func (tx *BadgerTransaction) IsActive() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.Status == TxStatusActive
}

// CreateNode adds a node to the transaction with constraint validation.
func (tx *BadgerTransaction) CreateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	if err := tx.validateNodeConstraints(node); err != nil {
		return err
	}

	if _, exists := tx.pendingNodes[node.ID]; exists {
		return ErrAlreadyExists
	}

	if _, deleted := tx.deletedNodes[node.ID]; !deleted {
		key := nodeKey(node.ID)
		_, err := tx.badgerTx.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("checking node existence: %w", err)
		}
	}

	nodeBytes, err := encodeNode(node)
	if err != nil {
		return fmt.Errorf("encoding node: %w", err)
	}

	if err := tx.badgerTx.Set(nodeKey(node.ID), nodeBytes); err != nil {
		return fmt.Errorf("writing node to transaction: %w", err)
	}

	for _, label := range node.Labels {
		if err := tx.badgerTx.Set(labelIndexKey(label, node.ID), []byte{}); err != nil {
			return fmt.Errorf("writing label index: %w", err)
		}
		for prop, value := range node.Properties {
			if indexedNodeProperties[prop] {
				if err := tx.badgerTx.Set(propertyIndexKey(label, prop, value, node.ID), []byte{}); err != nil {
					return fmt.Errorf("writing property index: %w", err)
				}
			}
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

// UpdateNode updates a node within the transaction.
func (tx *BadgerTransaction) UpdateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	if err := tx.validateNodeConstraints(node); err != nil {
		return err
	}

	var oldNode *Node
	if pending, exists := tx.pendingNodes[node.ID]; exists {
		oldNode = copyNode(pending)
	} else {
		item, err := tx.badgerTx.Get(nodeKey(node.ID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading node: %w", err)
		}

		var nodeBytes []byte
		if err := item.Value(func(val []byte) error {
			nodeBytes = append([]byte{}, val...)
			return nil
		}); err != nil {
			return fmt.Errorf("reading node value: %w", err)
		}

		oldNode, err = decodeNode(nodeBytes)
		if err != nil {
			return fmt.Errorf("decoding node: %w", err)
		}
	}

	nodeBytes, err := encodeNode(node)
	if err != nil {
		return fmt.Errorf("encoding node: %w", err)
	}

	if err := tx.badgerTx.Set(nodeKey(node.ID), nodeBytes); err != nil {
		return fmt.Errorf("writing node: %w", err)
	}

	oldLabelSet := make(map[string]bool, len(oldNode.Labels))
	for _, label := range oldNode.Labels {
		oldLabelSet[label] = true
	}

	newLabelSet := make(map[string]bool, len(node.Labels))
	for _, label := range node.Labels {
		newLabelSet[label] = true
		if !oldLabelSet[label] {
			if err := tx.badgerTx.Set(labelIndexKey(label, node.ID), []byte{}); err != nil {
				return fmt.Errorf("writing label index: %w", err)
			}
		}
	}
	for _, label := range oldNode.Labels {
		if !newLabelSet[label] {
			if err := tx.badgerTx.Delete(labelIndexKey(label, node.ID)); err != nil {
				return fmt.Errorf("deleting label index: %w", err)
			}
		}
	}

	for _, label := range oldNode.Labels {
		for prop, value := range oldNode.Properties {
			if indexedNodeProperties[prop] {
				tx.badgerTx.Delete(propertyIndexKey(label, prop, value, node.ID))
			}
		}
	}
	for _, label := range node.Labels {
		for prop, value := range node.Properties {
			if indexedNodeProperties[prop] {
				if err := tx.badgerTx.Set(propertyIndexKey(label, prop, value, node.ID), []byte{}); err != nil {
					return fmt.Errorf("writing property index: %w", err)
				}
			}
		}
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

// DeleteNode deletes a node within the transaction.
func (tx *BadgerTransaction) DeleteNode(nodeID NodeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	var node *Node
	if pending, exists := tx.pendingNodes[nodeID]; exists {
		node = pending
	} else {
		item, err := tx.badgerTx.Get(nodeKey(nodeID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading node: %w", err)
		}

		var nodeBytes []byte
		if err := item.Value(func(val []byte) error {
			nodeBytes = append([]byte{}, val...)
			return nil
		}); err != nil {
			return fmt.Errorf("reading node value: %w", err)
		}

		node, err = decodeNode(nodeBytes)
		if err != nil {
			return fmt.Errorf("decoding node: %w", err)
		}
	}

	if err := tx.badgerTx.Delete(nodeKey(nodeID)); err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	for _, label := range node.Labels {
		if err := tx.badgerTx.Delete(labelIndexKey(label, nodeID)); err != nil {
			return fmt.Errorf("deleting label index: %w", err)
		}
		for prop, value := range node.Properties {
			if indexedNodeProperties[prop] {
				tx.badgerTx.Delete(propertyIndexKey(label, prop, value, nodeID))
			}
		}
	}

	delete(tx.pendingNodes, nodeID)
	tx.deletedNodes[nodeID] = struct{}{}

	tx.operations = append(tx.operations, Operation{
		Type:      OpDeleteNode,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		OldNode:   node,
	})

	return nil
}

// CreateEdge adds an edge to the transaction.
func (tx *BadgerTransaction) CreateEdge(edge *Edge) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	if !tx.nodeExists(edge.StartNode) {
		return ErrInvalidEdge
	}
	if !tx.nodeExists(edge.EndNode) {
		return ErrInvalidEdge
	}

	if _, exists := tx.pendingEdges[edge.ID]; exists {
		return ErrAlreadyExists
	}

	edgeBytes, err := encodeEdge(edge)
	if err != nil {
		return fmt.Errorf("encoding edge: %w", err)
	}

	if err := tx.badgerTx.Set(edgeKey(edge.ID), edgeBytes); err != nil {
		return fmt.Errorf("writing edge: %w", err)
	}
	if err := tx.badgerTx.Set(outgoingIndexKey(edge.StartNode, edge.ID), []byte{}); err != nil {
		return fmt.Errorf("writing outgoing index: %w", err)
	}
	if err := tx.badgerTx.Set(incomingIndexKey(edge.EndNode, edge.ID), []byte{}); err != nil {
		return fmt.Errorf("writing incoming index: %w", err)
	}
	for prop, value := range edge.Properties {
		if indexedEdgeProperties[prop] {
			if err := tx.badgerTx.Set(edgePropertyIndexKey(edge.Type, prop, value, edge.ID), []byte{}); err != nil {
				return fmt.Errorf("writing edge property index: %w", err)
			}
		}
	}

	edgeCopy := copyEdge(edge)
	tx.pendingEdges[edge.ID] = edgeCopy

	tx.operations = append(tx.operations, Operation{
		Type:      OpCreateEdge,
		Timestamp: time.Now(),
		EdgeID:    edge.ID,
		Edge:      edgeCopy,
	})

	return nil
}

// DeleteEdge deletes an edge from the transaction.
func (tx *BadgerTransaction) DeleteEdge(edgeID EdgeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	if tx.ReadOnly {
		return ErrReadOnlyTransaction
	}

	var edge *Edge
	if pending, exists := tx.pendingEdges[edgeID]; exists {
		edge = pending
	} else {
		item, err := tx.badgerTx.Get(edgeKey(edgeID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading edge: %w", err)
		}

		var edgeBytes []byte
		if err := item.Value(func(val []byte) error {
			edgeBytes = append([]byte{}, val...)
			return nil
		}); err != nil {
			return fmt.Errorf("reading edge value: %w", err)
		}

		edge, err = decodeEdge(edgeBytes)
		if err != nil {
			return fmt.Errorf("decoding edge: %w", err)
		}
	}

	if err := tx.badgerTx.Delete(edgeKey(edgeID)); err != nil {
		return fmt.Errorf("deleting edge: %w", err)
	}
	if err := tx.badgerTx.Delete(outgoingIndexKey(edge.StartNode, edgeID)); err != nil {
		return fmt.Errorf("deleting outgoing index: %w", err)
	}
	if err := tx.badgerTx.Delete(incomingIndexKey(edge.EndNode, edgeID)); err != nil {
		return fmt.Errorf("deleting incoming index: %w", err)
	}
	for prop, value := range edge.Properties {
		if indexedEdgeProperties[prop] {
			tx.badgerTx.Delete(edgePropertyIndexKey(edge.Type, prop, value, edgeID))
		}
	}

	delete(tx.pendingEdges, edgeID)
	tx.deletedEdges[edgeID] = struct{}{}

	tx.operations = append(tx.operations, Operation{
		Type:      OpDeleteEdge,
		Timestamp: time.Now(),
		EdgeID:    edgeID,
		OldEdge:   edge,
	})

	return nil
}

// GetNode retrieves a node, checking pending changes first (read-your-writes).
func (tx *BadgerTransaction) GetNode(nodeID NodeID) (*Node, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if _, deleted := tx.deletedNodes[nodeID]; deleted {
		return nil, ErrNotFound
	}
	if node, exists := tx.pendingNodes[nodeID]; exists {
		return copyNode(node), nil
	}

	item, err := tx.badgerTx.Get(nodeKey(nodeID))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading node: %w", err)
	}

	var nodeBytes []byte
	if err := item.Value(func(val []byte) error {
		nodeBytes = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("reading node value: %w", err)
	}

	return decodeNode(nodeBytes)
}

// Commit applies all changes atomically. A read-only transaction never
// wrote anything to badgerTx, so it discards the empty txn and marks
// itself committed without ever calling Badger's Commit.
func (tx *BadgerTransaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}

	if tx.ReadOnly {
		tx.badgerTx.Discard()
		tx.Status = TxStatusCommitted
		return nil
	}

	if err := tx.validateAllConstraints(); err != nil {
		tx.badgerTx.Discard()
		tx.Status = TxStatusRolledBack
		return fmt.Errorf("constraint violation: %w", err)
	}

	if len(tx.Metadata) > 0 {
		log.Printf("[transaction %s] committing with metadata: %v", tx.ID, tx.Metadata)
	}

	if err := tx.badgerTx.Commit(); err != nil {
		tx.Status = TxStatusRolledBack
		return fmt.Errorf("badger commit failed: %w", err)
	}

	tx.Status = TxStatusCommitted
	return nil
}

// Rollback discards all changes.
func (tx *BadgerTransaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}

	tx.badgerTx.Discard()
	tx.Status = TxStatusRolledBack
	return nil
}

// SetMetadata sets transaction metadata (same contract as Transaction).
func (tx *BadgerTransaction) SetMetadata(metadata map[string]interface{}) error {
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

// GetMetadata returns transaction metadata copy.
func (tx *BadgerTransaction) GetMetadata() map[string]interface{} {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	result := make(map[string]interface{})
	for k, v := range tx.Metadata {
		result[k] = v
	}
	return result
}

// OperationCount returns the number of buffered operations.
func (tx *BadgerTransaction) OperationCount() int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return len(tx.operations)
}

// nodeExists checks if a node exists (pending or storage). Must be
// called with tx.mu held.
func (tx *BadgerTransaction) nodeExists(nodeID NodeID) bool {
	if _, deleted := tx.deletedNodes[nodeID]; deleted {
		return false
	}
	if _, exists := tx.pendingNodes[nodeID]; exists {
		return true
	}

	_, err := tx.badgerTx.Get(nodeKey(nodeID))
	return err == nil
}

// validateNodeConstraints checks all UNIQUE constraints declared on node's labels.
func (tx *BadgerTransaction) validateNodeConstraints(node *Node) error {
	constraints := tx.engine.schema.GetConstraintsForLabels(node.Labels)

	for _, constraint := range constraints {
		if constraint.Type == ConstraintUnique {
			if err := tx.checkUniqueConstraint(node, constraint); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkUniqueConstraint ensures property value is unique across ALL data.
func (tx *BadgerTransaction) checkUniqueConstraint(node *Node, c Constraint) error {
	prop := c.Properties[0]
	value := node.Properties[prop]

	if value == nil {
		return nil
	}

	for id, n := range tx.pendingNodes {
		if id == node.ID {
			continue
		}
		if hasLabel(n.Labels, c.Label) && compareValues(n.Properties[prop], value) {
			return &ConstraintViolationError{
				Type:       ConstraintUnique,
				Label:      c.Label,
				Properties: []string{prop},
				Message:    fmt.Sprintf("node with %s=%v already exists in transaction", prop, value),
			}
		}
	}

	return tx.scanForUniqueViolation(c.Label, prop, value, node.ID)
}

// scanForUniqueViolation performs a full label scan to check for UNIQUE violations.
func (tx *BadgerTransaction) scanForUniqueViolation(label, property string, value interface{}, excludeNodeID NodeID) error {
	prefix := labelIndexPrefix(label)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	iter := tx.badgerTx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		key := iter.Item().Key()

		parts := bytes.Split(key[1:], []byte{0x00})
		if len(parts) != 2 {
			continue
		}
		nodeID := NodeID(parts[1])

		if nodeID == excludeNodeID {
			continue
		}
		if _, deleted := tx.deletedNodes[nodeID]; deleted {
			continue
		}

		var existingNode *Node
		if pending, ok := tx.pendingNodes[nodeID]; ok {
			existingNode = pending
		} else {
			nodeItem, err := tx.badgerTx.Get(nodeKey(nodeID))
			if err != nil {
				continue
			}

			var nodeBytes []byte
			if err := nodeItem.Value(func(val []byte) error {
				nodeBytes = append([]byte{}, val...)
				return nil
			}); err != nil {
				continue
			}

			existingNode, err = decodeNode(nodeBytes)
			if err != nil {
				continue
			}
		}

		if existingValue, ok := existingNode.Properties[property]; ok && compareValues(existingValue, value) {
			return &ConstraintViolationError{
				Type:       ConstraintUnique,
				Label:      label,
				Properties: []string{property},
				Message:    fmt.Sprintf("node with %s=%v already exists (nodeID: %s)", property, value, existingNode.ID),
			}
		}
	}

	return nil
}

// compareValues compares two property values for equality, tolerating
// the numeric type drift JSON/MessagePack round-trips introduce.
func compareValues(a, b interface{}) bool {
	switch v1 := a.(type) {
	case int:
		switch v2 := b.(type) {
		case int:
			return v1 == v2
		case int64:
			return int64(v1) == v2
		case float64:
			return float64(v1) == v2
		}
	case int64:
		switch v2 := b.(type) {
		case int:
			return v1 == int64(v2)
		case int64:
			return v1 == v2
		case float64:
			return float64(v1) == v2
		}
	case float64:
		switch v2 := b.(type) {
		case int:
			return v1 == float64(v2)
		case int64:
			return v1 == float64(v2)
		case float64:
			return v1 == v2
		}
	case string:
		if v2, ok := b.(string); ok {
			return v1 == v2
		}
	case bool:
		if v2, ok := b.(bool); ok {
			return v1 == v2
		}
	}

	return a == b
}

// validateAllConstraints performs final validation before commit.
func (tx *BadgerTransaction) validateAllConstraints() error {
	for _, node := range tx.pendingNodes {
		if err := tx.validateNodeConstraints(node); err != nil {
			return err
		}
	}
	return nil
}

func hasLabel(labels []string, target string) bool {
	for _, label := range labels {
		if label == target {
			return true
		}
	}
	return false
}

// ConstraintViolationError is returned when a constraint is violated.
type ConstraintViolationError struct {
	Type       ConstraintType
	Label      string
	Properties []string
	Message    string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation (%s on %s.%v): %s",
		e.Type, e.Label, e.Properties, e.Message)
}
