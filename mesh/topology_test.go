package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGridEdgeNodeHasFewerNeighbors(t *testing.T) {
	top, err := New(Grid, 9) // 3x3
	require.NoError(t, err)
	require.Len(t, top.Neighbors(0), 2) // corner: east + south only
	require.Len(t, top.Neighbors(4), 4) // center
}

func TestTorusWrapsBothAxes(t *testing.T) {
	top, err := New(Torus, 9) // 3x3
	require.NoError(t, err)
	require.Len(t, top.Neighbors(0), 4) // every node has 4 neighbors once wrapped
}

func TestDenseEveryOtherNodeIsNeighbor(t *testing.T) {
	top, err := New(Dense, 5)
	require.NoError(t, err)
	require.Len(t, top.Neighbors(2), 4)
}

func TestParseKindRejectsUnknown(t *testing.T) {
	_, err := ParseKind("ring")
	require.Error(t, err)
}
