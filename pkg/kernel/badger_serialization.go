// Serialization helpers for BadgerDB's on-disk node/edge representation.
package kernel

import (
	"encoding/json"
	"fmt"
)

func marshalNode(sn serializableNode) ([]byte, error) {
	data, err := json.Marshal(sn)
	if err != nil {
		return nil, fmt.Errorf("marshaling node: %w", err)
	}
	return data, nil
}

func unmarshalNode(data []byte) (serializableNode, error) {
	var sn serializableNode
	if err := json.Unmarshal(data, &sn); err != nil {
		return serializableNode{}, fmt.Errorf("unmarshaling node: %w", err)
	}
	return sn, nil
}

func marshalEdge(se serializableEdge) ([]byte, error) {
	data, err := json.Marshal(se)
	if err != nil {
		return nil, fmt.Errorf("marshaling edge: %w", err)
	}
	return data, nil
}

func unmarshalEdge(data []byte) (serializableEdge, error) {
	var se serializableEdge
	if err := json.Unmarshal(data, &se); err != nil {
		return serializableEdge{}, fmt.Errorf("unmarshaling edge: %w", err)
	}
	return se, nil
}
