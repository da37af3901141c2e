// Package kernel - MemoryEngine is an in-process implementation of Engine.
//
// Use Cases:
//   - Unit testing (no disk I/O, fast cleanup)
//   - Small datasets that fit entirely in RAM
//   - Development and prototyping
//
// Performance Characteristics:
//   - Node lookup by ID: O(1)
//   - Node lookup by label: O(k) where k = nodes with that label
//   - Node lookup by indexed property: O(1)
//   - Outgoing/incoming edges: O(degree)
//
// Thread Safety: all public methods are safe for concurrent use.
package kernel

import (
	"fmt"
	"sync"
)

// MemoryEngine is a thread-safe in-memory graph storage implementation.
type MemoryEngine struct {
	mu    sync.RWMutex
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	nodesByLabel  map[string]map[NodeID]struct{}
	outgoingEdges map[NodeID]map[EdgeID]struct{}
	incomingEdges map[NodeID]map[EdgeID]struct{}

	// nodeByProperty supports the auto-indexed property lookups named in
	// spec.md §6 (oid, npid, type, subtype, name, aid, pid): label:property
	// -> value -> nodeID, enforced to hold at most one node per spec
	// invariant #1 when the property is also a uniqueness constraint.
	nodeByProperty map[string]map[any]NodeID

	// edgeByProperty supports the relationship-property auto-index named
	// in spec.md §6 (workflow, npeid): property -> value -> edge IDs.
	edgeByProperty map[string]map[any]map[EdgeID]struct{}

	schema *SchemaManager
	closed bool
}

// indexedNodeProperties are the node properties auto-indexed by the kernel,
// mirroring spec.md §6's "Auto-indexed node properties" list.
var indexedNodeProperties = map[string]bool{
	"oid": true, "npid": true, "type": true, "subtype": true,
	"name": true, "aid": true, "pid": true,
}

// indexedEdgeProperties are the relationship properties auto-indexed by the
// kernel, mirroring spec.md §6's "Auto-indexed relationship properties".
var indexedEdgeProperties = map[string]bool{
	"workflow": true, "npeid": true,
}

// NewMemoryEngine creates an empty in-memory storage engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		nodes:          make(map[NodeID]*Node),
		edges:          make(map[EdgeID]*Edge),
		nodesByLabel:   make(map[string]map[NodeID]struct{}),
		outgoingEdges:  make(map[NodeID]map[EdgeID]struct{}),
		incomingEdges:  make(map[NodeID]map[EdgeID]struct{}),
		nodeByProperty: make(map[string]map[any]NodeID),
		edgeByProperty: make(map[string]map[any]map[EdgeID]struct{}),
		schema:         NewSchemaManager(),
	}
}

// CreateNode creates a new node. The ID must be unique; duplicate IDs
// return ErrAlreadyExists without mutating the existing node.
func (m *MemoryEngine) CreateNode(node *Node) error {
	if node == nil {
		return ErrInvalidData
	}
	if node.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.nodes[node.ID]; exists {
		return ErrAlreadyExists
	}

	for _, label := range node.Labels {
		for propName, propValue := range node.Properties {
			if err := m.schema.CheckUniqueConstraint(label, propName, propValue, ""); err != nil {
				return fmt.Errorf("constraint violation: %w", err)
			}
		}
	}

	m.createNodeUnlocked(node)
	return nil
}

// GetNode retrieves a node by its unique ID.
func (m *MemoryEngine) GetNode(id NodeID) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	node, exists := m.nodes[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyNode(node), nil
}

// GetNodeByProperty resolves a node via the label×property auto-index,
// returning at most one node (spec.md §4.2).
func (m *MemoryEngine) GetNodeByProperty(label, property string, value any) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	key := indexKey(label, property)
	values, ok := m.nodeByProperty[key]
	if !ok {
		return nil, ErrNotFound
	}
	id, ok := values[value]
	if !ok {
		return nil, ErrNotFound
	}
	node, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyNode(node), nil
}

// UpdateNode replaces an existing node's labels/properties wholesale (the
// core API has no partial-update operation, per spec.md's Lifecycle note).
func (m *MemoryEngine) UpdateNode(node *Node) error {
	if node == nil {
		return ErrInvalidData
	}
	if node.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.nodes[node.ID]; !exists {
		return ErrNotFound
	}

	m.updateNodeUnlocked(node)
	return nil
}

// DeleteNode removes a node and all edges incident to it.
func (m *MemoryEngine) DeleteNode(id NodeID) error {
	if id == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.nodes[id]; !exists {
		return ErrNotFound
	}
	m.deleteNodeUnlocked(id)
	return nil
}

// CreateEdge creates a new directed, typed edge. Both endpoints must
// already exist (spec invariant #2); otherwise ErrInvalidEdge is returned
// and the store is left unchanged.
func (m *MemoryEngine) CreateEdge(edge *Edge) error {
	if edge == nil {
		return ErrInvalidData
	}
	if edge.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.edges[edge.ID]; exists {
		return ErrAlreadyExists
	}
	if _, exists := m.nodes[edge.StartNode]; !exists {
		return ErrInvalidEdge
	}
	if _, exists := m.nodes[edge.EndNode]; !exists {
		return ErrInvalidEdge
	}

	m.createEdgeUnlocked(edge)
	return nil
}

// GetEdge retrieves an edge by ID.
func (m *MemoryEngine) GetEdge(id EdgeID) (*Edge, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	edge, exists := m.edges[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyEdge(edge), nil
}

// UpdateEdge replaces an existing edge's properties wholesale.
func (m *MemoryEngine) UpdateEdge(edge *Edge) error {
	if edge == nil {
		return ErrInvalidData
	}
	if edge.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	existing, exists := m.edges[edge.ID]
	if !exists {
		return ErrNotFound
	}

	if existing.StartNode != edge.StartNode || existing.EndNode != edge.EndNode {
		if _, exists := m.nodes[edge.StartNode]; !exists {
			return ErrInvalidEdge
		}
		if _, exists := m.nodes[edge.EndNode]; !exists {
			return ErrInvalidEdge
		}
		m.unindexEdge(existing)
		m.indexEdge(edge)
	}

	stored := copyEdge(edge)
	m.edges[edge.ID] = stored
	return nil
}

// DeleteEdge removes a single edge by ID.
func (m *MemoryEngine) DeleteEdge(id EdgeID) error {
	if id == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.edges[id]; !exists {
		return ErrNotFound
	}
	m.deleteEdgeUnlocked(id)
	return nil
}

// GetNodesByLabel returns all nodes carrying the given label.
func (m *MemoryEngine) GetNodesByLabel(label string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	nodeIDs := m.nodesByLabel[label]
	nodes := make([]*Node, 0, len(nodeIDs))
	for id := range nodeIDs {
		if node := m.nodes[id]; node != nil {
			nodes = append(nodes, copyNode(node))
		}
	}
	return nodes, nil
}

// GetEdgeBetween returns an edge between two nodes with the given type, or
// nil if none exists. An empty edgeType matches any type.
func (m *MemoryEngine) GetEdgeBetween(source, target NodeID, edgeType string) *Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}
	for edgeID := range m.outgoingEdges[source] {
		edge := m.edges[edgeID]
		if edge != nil && edge.EndNode == target {
			if edgeType == "" || edge.Type == edgeType {
				return copyEdge(edge)
			}
		}
	}
	return nil
}

// GetOutgoingEdges returns all edges where the given node is the source.
func (m *MemoryEngine) GetOutgoingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	edgeIDs := m.outgoingEdges[nodeID]
	edges := make([]*Edge, 0, len(edgeIDs))
	for id := range edgeIDs {
		if edge := m.edges[id]; edge != nil {
			edges = append(edges, copyEdge(edge))
		}
	}
	return edges, nil
}

// GetIncomingEdges returns all edges where the given node is the target.
func (m *MemoryEngine) GetIncomingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	edgeIDs := m.incomingEdges[nodeID]
	edges := make([]*Edge, 0, len(edgeIDs))
	for id := range edgeIDs {
		if edge := m.edges[id]; edge != nil {
			edges = append(edges, copyEdge(edge))
		}
	}
	return edges, nil
}

// GetEdgesBetween returns all edges from startID to endID, of any type.
func (m *MemoryEngine) GetEdgesBetween(startID, endID NodeID) ([]*Edge, error) {
	if startID == "" || endID == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	edges := make([]*Edge, 0)
	for id := range m.outgoingEdges[startID] {
		if edge := m.edges[id]; edge != nil && edge.EndNode == endID {
			edges = append(edges, copyEdge(edge))
		}
	}
	return edges, nil
}

// GetEdgesByProperty resolves edges via the relationship-property
// auto-index (spec.md §6), e.g. all edges with a given `workflow` value.
func (m *MemoryEngine) GetEdgesByProperty(property string, value any) ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	ids := m.edgeByProperty[property][value]
	edges := make([]*Edge, 0, len(ids))
	for id := range ids {
		if edge := m.edges[id]; edge != nil {
			edges = append(edges, copyEdge(edge))
		}
	}
	return edges, nil
}

// AllNodes returns every node in the storage engine.
func (m *MemoryEngine) AllNodes() ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	nodes := make([]*Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		nodes = append(nodes, copyNode(node))
	}
	return nodes, nil
}

// AllEdges returns every edge in the storage engine.
func (m *MemoryEngine) AllEdges() ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	edges := make([]*Edge, 0, len(m.edges))
	for _, edge := range m.edges {
		edges = append(edges, copyEdge(edge))
	}
	return edges, nil
}

// BulkCreateNodes creates multiple nodes atomically: all validated before
// any are inserted, so a single bad node leaves the store unchanged.
func (m *MemoryEngine) BulkCreateNodes(nodes []*Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}

	for _, node := range nodes {
		if node == nil {
			return ErrInvalidData
		}
		if node.ID == "" {
			return ErrInvalidID
		}
		if _, exists := m.nodes[node.ID]; exists {
			return ErrAlreadyExists
		}
	}
	for _, node := range nodes {
		for _, label := range node.Labels {
			for propName, propValue := range node.Properties {
				if err := m.schema.CheckUniqueConstraint(label, propName, propValue, ""); err != nil {
					return fmt.Errorf("constraint violation: %w", err)
				}
			}
		}
	}
	for _, node := range nodes {
		m.createNodeUnlocked(node)
	}
	return nil
}

// BulkCreateEdges creates multiple edges atomically.
func (m *MemoryEngine) BulkCreateEdges(edges []*Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}

	for _, edge := range edges {
		if edge == nil {
			return ErrInvalidData
		}
		if edge.ID == "" {
			return ErrInvalidID
		}
		if _, exists := m.edges[edge.ID]; exists {
			return ErrAlreadyExists
		}
		if _, exists := m.nodes[edge.StartNode]; !exists {
			return ErrInvalidEdge
		}
		if _, exists := m.nodes[edge.EndNode]; !exists {
			return ErrInvalidEdge
		}
	}
	for _, edge := range edges {
		m.createEdgeUnlocked(edge)
	}
	return nil
}

// Close releases all in-memory state. Idempotent.
func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.nodes = nil
	m.edges = nil
	m.nodesByLabel = nil
	m.outgoingEdges = nil
	m.incomingEdges = nil
	m.nodeByProperty = nil
	m.edgeByProperty = nil
	return nil
}

// NodeCount returns the number of nodes currently stored.
func (m *MemoryEngine) NodeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStorageClosed
	}
	return int64(len(m.nodes)), nil
}

// EdgeCount returns the number of edges currently stored.
func (m *MemoryEngine) EdgeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStorageClosed
	}
	return int64(len(m.edges)), nil
}

// GetInDegree returns the number of incoming edges to a node.
func (m *MemoryEngine) GetInDegree(nodeID NodeID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}
	return len(m.incomingEdges[nodeID])
}

// GetOutDegree returns the number of outgoing edges from a node.
func (m *MemoryEngine) GetOutDegree(nodeID NodeID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}
	return len(m.outgoingEdges[nodeID])
}

// GetSchema returns the schema manager for constraint and index management.
func (m *MemoryEngine) GetSchema() *SchemaManager {
	return m.schema
}

func copyNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	copied := &Node{
		ID:         n.ID,
		Labels:     append([]string(nil), n.Labels...),
		Properties: make(map[string]any, len(n.Properties)),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	for k, v := range n.Properties {
		copied.Properties[k] = v
	}
	return copied
}

func copyEdge(e *Edge) *Edge {
	if e == nil {
		return nil
	}
	copied := &Edge{
		ID:         e.ID,
		StartNode:  e.StartNode,
		EndNode:    e.EndNode,
		Type:       e.Type,
		Properties: make(map[string]any, len(e.Properties)),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	for k, v := range e.Properties {
		copied.Properties[k] = v
	}
	return copied
}

func indexKey(label, property string) string {
	return label + ":" + property
}

// ============================================================================
// Transaction support — unlocked methods.
//
// These assume the caller already holds m.mu.Lock() and are used internally
// by Transaction.Commit(). Do not call these directly.
// ============================================================================

func (m *MemoryEngine) createNodeUnlocked(node *Node) {
	stored := copyNode(node)
	m.nodes[node.ID] = stored

	for _, label := range node.Labels {
		if m.nodesByLabel[label] == nil {
			m.nodesByLabel[label] = make(map[NodeID]struct{})
		}
		m.nodesByLabel[label][node.ID] = struct{}{}

		for propName, propValue := range node.Properties {
			m.schema.RegisterUniqueValue(label, propName, propValue, node.ID)
			if indexedNodeProperties[propName] {
				key := indexKey(label, propName)
				if m.nodeByProperty[key] == nil {
					m.nodeByProperty[key] = make(map[any]NodeID)
				}
				m.nodeByProperty[key][propValue] = node.ID
			}
		}
	}
}

func (m *MemoryEngine) updateNodeUnlocked(node *Node) {
	if existing, exists := m.nodes[node.ID]; exists {
		m.unindexNode(existing)
	}
	m.createNodeUnlocked(node)
}

func (m *MemoryEngine) unindexNode(node *Node) {
	for _, label := range node.Labels {
		if m.nodesByLabel[label] != nil {
			delete(m.nodesByLabel[label], node.ID)
		}
		for propName, propValue := range node.Properties {
			if indexedNodeProperties[propName] {
				key := indexKey(label, propName)
				if m.nodeByProperty[key] != nil {
					delete(m.nodeByProperty[key], propValue)
				}
			}
		}
	}
}

func (m *MemoryEngine) deleteNodeUnlocked(id NodeID) {
	node, exists := m.nodes[id]
	if !exists {
		return
	}
	m.unindexNode(node)

	for edgeID := range m.outgoingEdges[id] {
		if edge := m.edges[edgeID]; edge != nil {
			m.unindexEdge(edge)
			delete(m.incomingEdges[edge.EndNode], edgeID)
		}
		delete(m.edges, edgeID)
	}
	delete(m.outgoingEdges, id)

	for edgeID := range m.incomingEdges[id] {
		if edge := m.edges[edgeID]; edge != nil {
			m.unindexEdge(edge)
			delete(m.outgoingEdges[edge.StartNode], edgeID)
		}
		delete(m.edges, edgeID)
	}
	delete(m.incomingEdges, id)

	delete(m.nodes, id)
}

func (m *MemoryEngine) indexEdge(edge *Edge) {
	if m.outgoingEdges[edge.StartNode] == nil {
		m.outgoingEdges[edge.StartNode] = make(map[EdgeID]struct{})
	}
	m.outgoingEdges[edge.StartNode][edge.ID] = struct{}{}

	if m.incomingEdges[edge.EndNode] == nil {
		m.incomingEdges[edge.EndNode] = make(map[EdgeID]struct{})
	}
	m.incomingEdges[edge.EndNode][edge.ID] = struct{}{}

	for propName, propValue := range edge.Properties {
		if indexedEdgeProperties[propName] {
			if m.edgeByProperty[propName] == nil {
				m.edgeByProperty[propName] = make(map[any]map[EdgeID]struct{})
			}
			if m.edgeByProperty[propName][propValue] == nil {
				m.edgeByProperty[propName][propValue] = make(map[EdgeID]struct{})
			}
			m.edgeByProperty[propName][propValue][edge.ID] = struct{}{}
		}
	}
}

func (m *MemoryEngine) unindexEdge(edge *Edge) {
	if outgoing := m.outgoingEdges[edge.StartNode]; outgoing != nil {
		delete(outgoing, edge.ID)
	}
	if incoming := m.incomingEdges[edge.EndNode]; incoming != nil {
		delete(incoming, edge.ID)
	}
	for propName, propValue := range edge.Properties {
		if indexedEdgeProperties[propName] {
			if ids := m.edgeByProperty[propName][propValue]; ids != nil {
				delete(ids, edge.ID)
			}
		}
	}
}

func (m *MemoryEngine) createEdgeUnlocked(edge *Edge) {
	stored := copyEdge(edge)
	m.edges[edge.ID] = stored
	m.indexEdge(stored)
}

func (m *MemoryEngine) deleteEdgeUnlocked(id EdgeID) {
	edge, exists := m.edges[id]
	if !exists {
		return
	}
	m.unindexEdge(edge)
	delete(m.edges, id)
}

// BeginTransaction creates a new transaction bound to this engine.
func (m *MemoryEngine) BeginTransaction(readOnly bool) *Transaction {
	return newTransaction(m, readOnly)
}

var _ Engine = (*MemoryEngine)(nil)
