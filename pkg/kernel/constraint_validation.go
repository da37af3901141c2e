// Constraint validation run when a UNIQUE constraint is declared against
// data that may already exist.
package kernel

import (
	"fmt"
)

// ValidateConstraintOnCreation checks that all existing data already
// satisfies c. Call this when a constraint is declared against a
// populated engine.
func (b *BadgerEngine) ValidateConstraintOnCreation(c Constraint) error {
	switch c.Type {
	case ConstraintUnique:
		return b.validateUniqueConstraintOnCreation(c)
	default:
		return fmt.Errorf("unknown constraint type: %s", c.Type)
	}
}

func (b *BadgerEngine) validateUniqueConstraintOnCreation(c Constraint) error {
	if len(c.Properties) != 1 {
		return fmt.Errorf("UNIQUE constraint requires exactly 1 property, got %d", len(c.Properties))
	}

	property := c.Properties[0]
	seen := make(map[interface{}]NodeID)

	nodes, err := b.GetNodesByLabel(c.Label)
	if err != nil {
		return fmt.Errorf("scanning nodes: %w", err)
	}

	for _, node := range nodes {
		value := node.Properties[property]
		if value == nil {
			continue
		}

		if existingNodeID, found := seen[value]; found {
			return &ConstraintViolationError{
				Type:       ConstraintUnique,
				Label:      c.Label,
				Properties: []string{property},
				Message: fmt.Sprintf("cannot create UNIQUE constraint: nodes %s and %s both have %s=%v",
					existingNodeID, node.ID, property, value),
			}
		}

		seen[value] = node.ID
	}

	return nil
}

// RelationshipConstraint is a UNIQUE constraint scoped to a relationship type.
type RelationshipConstraint struct {
	Name       string
	Type       ConstraintType
	RelType    string
	Properties []string
}

// ValidateRelationshipConstraint validates relationship property constraints.
func (b *BadgerEngine) ValidateRelationshipConstraint(rc RelationshipConstraint) error {
	switch rc.Type {
	case ConstraintUnique:
		return b.validateUniqueRelationshipConstraint(rc)
	default:
		return fmt.Errorf("unsupported relationship constraint type: %s", rc.Type)
	}
}

func (b *BadgerEngine) validateUniqueRelationshipConstraint(rc RelationshipConstraint) error {
	if len(rc.Properties) != 1 {
		return fmt.Errorf("UNIQUE constraint on relationships requires exactly 1 property")
	}

	property := rc.Properties[0]
	seen := make(map[interface{}]EdgeID)

	edges, err := b.AllEdges()
	if err != nil {
		return fmt.Errorf("scanning edges: %w", err)
	}

	for _, edge := range edges {
		if edge.Type != rc.RelType {
			continue
		}

		value := edge.Properties[property]
		if value == nil {
			continue
		}

		if existingEdgeID, found := seen[value]; found {
			return &ConstraintViolationError{
				Type:       ConstraintUnique,
				Label:      rc.RelType,
				Properties: []string{property},
				Message: fmt.Sprintf("cannot create UNIQUE constraint on relationship: edges %s and %s both have %s=%v",
					existingEdgeID, edge.ID, property, value),
			}
		}

		seen[value] = edge.ID
	}

	return nil
}

// PropertyType names the expected Go representation of a property value.
type PropertyType string

const (
	PropertyTypeString  PropertyType = "STRING"
	PropertyTypeInteger PropertyType = "INTEGER"
	PropertyTypeFloat   PropertyType = "FLOAT"
	PropertyTypeBoolean PropertyType = "BOOLEAN"
)

// ValidatePropertyType checks that value matches expectedType, tolerating
// the float64 encoding that JSON deserialization gives whole numbers.
func ValidatePropertyType(value interface{}, expectedType PropertyType) error {
	if value == nil {
		return nil
	}

	switch expectedType {
	case PropertyTypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected STRING, got %T", value)
		}
	case PropertyTypeInteger:
		switch v := value.(type) {
		case int, int32, int64:
			return nil
		case float64:
			if v == float64(int64(v)) {
				return nil
			}
			return fmt.Errorf("expected INTEGER, got %T", value)
		case float32:
			if v == float32(int32(v)) {
				return nil
			}
			return fmt.Errorf("expected INTEGER, got %T", value)
		default:
			return fmt.Errorf("expected INTEGER, got %T", value)
		}
	case PropertyTypeFloat:
		switch value.(type) {
		case float32, float64:
			return nil
		default:
			return fmt.Errorf("expected FLOAT, got %T", value)
		}
	case PropertyTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected BOOLEAN, got %T", value)
		}
	default:
		return fmt.Errorf("unknown property type: %s", expectedType)
	}

	return nil
}

// PropertyTypeConstraint pins a property to an expected type.
type PropertyTypeConstraint struct {
	Label        string
	Property     string
	ExpectedType PropertyType
}

// ValidatePropertyTypeConstraintOnCreation validates existing data against a type constraint.
func (b *BadgerEngine) ValidatePropertyTypeConstraintOnCreation(ptc PropertyTypeConstraint) error {
	nodes, err := b.GetNodesByLabel(ptc.Label)
	if err != nil {
		return fmt.Errorf("scanning nodes: %w", err)
	}

	for _, node := range nodes {
		value := node.Properties[ptc.Property]
		if err := ValidatePropertyType(value, ptc.ExpectedType); err != nil {
			return fmt.Errorf("node %s property %s: %w", node.ID, ptc.Property, err)
		}
	}

	return nil
}
