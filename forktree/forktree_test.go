package forktree

import (
	"math/big"
	"testing"

	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

func headerAt(t *testing.T, number uint64, parentHash types.Hash32) *types.HeaderMgr {
	t.Helper()
	h := &types.Header{
		ParentHash: parentHash,
		Difficulty: big.NewInt(0),
		Number:     new(big.Int).SetUint64(number),
	}
	raw, err := h.EncodeRLP()
	require.NoError(t, err)
	mgr, err := types.NewHeaderMgr(raw, 0)
	require.NoError(t, err)
	return mgr
}

func TestNewRootHasNoParentAndZeroDescCount(t *testing.T) {
	root := NewRoot(headerAt(t, 0, types.Hash32{}), nil)
	require.Nil(t, root.Parent())
	require.Equal(t, uint64(0), root.DescCount())
	require.Empty(t, root.Children())
}

// Property 4: adding a descendant increments the descendant count of every
// ancestor on the path from the new leaf to the root, and nowhere else.
func TestAddChildUpdatesAncestorDescCounts(t *testing.T) {
	root := NewRoot(headerAt(t, 0, types.Hash32{}), nil)
	a := root.AddChild(headerAt(t, 1, root.Header().Hash()), nil)
	b := a.AddChild(headerAt(t, 2, a.Header().Hash()), nil)
	_ = b.AddChild(headerAt(t, 3, b.Header().Hash()), nil)

	require.Equal(t, uint64(2), a.DescCount(), "a has two descendants: b and c")
	require.Equal(t, uint64(1), b.DescCount(), "b has one descendant: c")
	require.Equal(t, uint64(0), root.DescCount(), "root has no parent entry")
}

func TestAddChildSiblingDoesNotAffectOtherBranch(t *testing.T) {
	root := NewRoot(headerAt(t, 0, types.Hash32{}), nil)
	a := root.AddChild(headerAt(t, 1, root.Header().Hash()), nil)
	_ = a.AddChild(headerAt(t, 2, a.Header().Hash()), nil)
	sibling := root.AddChild(headerAt(t, 1, root.Header().Hash()), nil)

	require.Equal(t, uint64(1), a.DescCount())
	require.Equal(t, uint64(0), sibling.DescCount())
}

func TestReleaseChildHasNDescDetachesAndReparents(t *testing.T) {
	root := NewRoot(headerAt(t, 0, types.Hash32{}), nil)
	a := root.AddChild(headerAt(t, 1, root.Header().Hash()), nil)
	_ = a.AddChild(headerAt(t, 2, a.Header().Hash()), nil)
	_ = a.AddChild(headerAt(t, 2, a.Header().Hash()), nil)

	require.Equal(t, uint64(2), a.DescCount())

	released := root.ReleaseChildHasNDesc(2)
	require.Same(t, a, released)
	require.Nil(t, released.Parent())
	require.Empty(t, root.Children())
}

func TestReleaseChildHasNDescReturnsNilWhenNoneQualify(t *testing.T) {
	root := NewRoot(headerAt(t, 0, types.Hash32{}), nil)
	root.AddChild(headerAt(t, 1, root.Header().Hash()), nil)

	require.Nil(t, root.ReleaseChildHasNDesc(5))
}
