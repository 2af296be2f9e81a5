package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFetchDefaultsToIndexZero(t *testing.T) {
	name, idx, err := parseFetch("output")
	require.NoError(t, err)
	assert.Equal(t, "output", name)
	assert.Equal(t, 0, idx)
}

func TestParseFetchParsesExplicitIndex(t *testing.T) {
	name, idx, err := parseFetch("output:2")
	require.NoError(t, err)
	assert.Equal(t, "output", name)
	assert.Equal(t, 2, idx)
}

func TestParseFetchRejectsNonIntegerIndex(t *testing.T) {
	_, _, err := parseFetch("output:abc")
	require.Error(t, err)
}
