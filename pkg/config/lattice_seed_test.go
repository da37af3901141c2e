package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orneryd/plus/pkg/graphstore"
	"github.com/orneryd/plus/pkg/kernel"
	"github.com/orneryd/plus/pkg/model"
	"github.com/orneryd/plus/pkg/privilege"
	"github.com/stretchr/testify/require"
)

func TestLoadAndApplyLatticeSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lattice.yaml")
	yamlContent := "classes:\n" +
		"  - name: CONTRACTOR\n" +
		"    dominates:\n" +
		"      - PUBLIC\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	seed, err := LoadLatticeSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Classes, 1)
	require.Equal(t, "CONTRACTOR", seed.Classes[0].Name)

	store := graphstore.New(kernel.NewMemoryEngine())
	require.NoError(t, store.Bootstrap())
	require.NoError(t, ApplyLatticeSeed(store, seed))

	ok, err := privilege.Dominates(store.Engine(), model.PrivilegeClass{Name: "CONTRACTOR"}, model.PrivilegeClass{Name: model.PrivilegePublic})
	require.NoError(t, err)
	require.True(t, ok)
}
