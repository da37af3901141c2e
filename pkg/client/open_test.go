package client

import (
	"testing"

	"github.com/orneryd/plus/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{Backend: "memory", QueryLimit: 10, TraversalMaxDepth: 10}
}

func TestOpen_SecondCallReturnsSameClient(t *testing.T) {
	t.Cleanup(func() { Close() })

	first, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := Open(memoryConfig())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestClose_IsIdempotent(t *testing.T) {
	_, err := Open(memoryConfig())
	require.NoError(t, err)

	require.NoError(t, Close())
	require.NoError(t, Close())
}

func TestOpen_ReopensAfterClose(t *testing.T) {
	t.Cleanup(func() { Close() })

	first, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, Close())

	second, err := Open(memoryConfig())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
