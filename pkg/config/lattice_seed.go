package config

import (
	"fmt"
	"os"

	"github.com/orneryd/plus/pkg/graphstore"
	"gopkg.in/yaml.v3"
)

// LatticeSeed describes privilege classes to add to the built-in
// dominance lattice at startup, loaded from a PLUS_LATTICE_SEED_FILE.
type LatticeSeed struct {
	Classes []LatticeSeedClass `yaml:"classes"`
}

// LatticeSeedClass names a new PrivilegeClass and the classes it
// dominates. Dominated classes must already exist — either built-in or
// declared earlier in the same file — since seeding applies in order.
type LatticeSeedClass struct {
	Name      string   `yaml:"name"`
	Dominates []string `yaml:"dominates"`
}

// LoadLatticeSeed reads and parses a YAML lattice-seed file.
func LoadLatticeSeed(path string) (*LatticeSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading lattice seed file %s: %w", path, err)
	}
	var seed LatticeSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("config: parsing lattice seed file %s: %w", path, err)
	}
	return &seed, nil
}

// ApplyLatticeSeed inserts every class in seed into store, in file order,
// via GraphStore.SeedPrivilegeClass.
func ApplyLatticeSeed(store *graphstore.GraphStore, seed *LatticeSeed) error {
	for _, c := range seed.Classes {
		if _, err := store.SeedPrivilegeClass(c.Name, c.Dominates); err != nil {
			return fmt.Errorf("config: applying lattice seed class %s: %w", c.Name, err)
		}
	}
	return nil
}
