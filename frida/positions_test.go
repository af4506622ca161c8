package frida

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldPositions(t *testing.T) {
	// domain 16 folded by 4 maps positions modulo 4
	got := FoldPositions([]uint64{1, 5, 9, 2, 13, 6}, 16, 4)
	// first-occurrence order, duplicates dropped
	require.Equal(t, []uint64{1, 2}, got)

	got = FoldPositions([]uint64{7, 3, 11, 0}, 16, 2)
	require.Equal(t, []uint64{7, 3, 0}, got)

	require.Empty(t, FoldPositions(nil, 16, 2))
}
