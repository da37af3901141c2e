package model

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// oidPrefix is the stable discriminator resolving spec.md §6's Open
// Question: OIDs are UUIDv7 strings prefixed urn:plus:obj:, NPIDs never
// carry this prefix (they are free-form external identifiers: hashes,
// URLs, database keys).
const oidPrefix = "urn:plus:obj:"

// NewOID mints a new, time-ordered PLUSObject identifier.
func NewOID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the OS entropy source is unavailable;
		// falling back to a random v4 keeps ID generation from ever
		// panicking an object-store write.
		id = uuid.New()
	}
	return oidPrefix + id.String()
}

// IsPLUSOID reports whether s syntactically looks like a PLUSObject OID
// rather than an NPID.
func IsPLUSOID(s string) bool {
	return strings.HasPrefix(s, oidPrefix)
}

// PrivilegeSet is a set of PrivilegeClass names, used both as an object's
// required clearance and as an actor's held clearance.
type PrivilegeSet []PrivilegeClass

// Names returns the privilege-class names sorted ascending — the Go
// realization of "PrivilegeSet → sorted class names" (spec.md §4.1),
// consumed directly by pkg/codec.
func (s PrivilegeSet) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// Contains reports whether name is present in the set.
func (s PrivilegeSet) Contains(name string) bool {
	for _, p := range s {
		if p.Name == name {
			return true
		}
	}
	return false
}
