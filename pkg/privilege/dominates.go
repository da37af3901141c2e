// Package privilege implements C5: the dominance relation over the
// PrivilegeClass lattice and the per-subtype surrogate view filter that
// gates every PLUSObject before it reaches a viewer.
package privilege

import (
	"errors"
	"fmt"

	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
)

const (
	relDominates = "dominates"

	// maxDominancePathLength bounds the transitive-closure path query
	// `(a) -[dominates]*1..100-> (b)` per spec.md §4.5.
	maxDominancePathLength = 100
)

// Dominates reports whether a dominates b: true if a == b, a is the ADMIN
// class, or a bounded-depth `dominates` edge path from a to b exists.
// Storage errors are surfaced; a non-existent a or b is simply "no path"
// (false), not an error, since dominance over an unknown class is
// meaningless rather than exceptional.
func Dominates(engine kernel.Engine, a, b model.PrivilegeClass) (bool, error) {
	if (a.PID != "" && a.PID == b.PID) || a.Name == model.PrivilegeAdmin {
		return true, nil
	}

	aPID := a.PID
	if aPID == "" {
		node, err := engine.GetNodeByProperty("PrivilegeClass", "name", a.Name)
		if err != nil || node == nil {
			return false, nil
		}
		aPID = string(node.ID)
	}

	bPID := b.PID
	if bPID == "" {
		node, err := engine.GetNodeByProperty("PrivilegeClass", "name", b.Name)
		if err != nil || node == nil {
			return false, nil
		}
		bPID = string(node.ID)
	}

	result, err := kernel.Traverse(engine, kernel.NodeID(aPID), kernel.TraversalOptions{
		RelTypes: []string{relDominates},
		Forward:  true,
		MaxDepth: maxDominancePathLength,
	})
	if err != nil {
		if errors.Is(err, kernel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("privilege: dominates(%s, %s): %w", a.Name, b.Name, err)
	}

	for _, node := range result.Nodes {
		if string(node.ID) == bPID {
			return true, nil
		}
	}
	return false, nil
}

// DominatesAny reports whether any class in viewerPrivileges dominates b.
func DominatesAny(engine kernel.Engine, viewerPrivileges []model.PrivilegeClass, b model.PrivilegeClass) (bool, error) {
	for _, a := range viewerPrivileges {
		ok, err := Dominates(engine, a, b)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
