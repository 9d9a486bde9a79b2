package consensus

import (
	"testing"

	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

func TestCommonValidateRejectsNilHeaders(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(1, 1000, 2000, types.Hash32{}, false, 0)

	require.ErrorIs(t, v.CommonValidate(parent, nil), ErrNilHeader)
	require.ErrorIs(t, v.CommonValidate(nil, parent), ErrNilParent)
}

func TestCommonValidateRejectsWrongBlockNumber(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(10, 1000, 2000, types.Hash32{}, false, 0)
	current := buildHeaderMgr(12, 1010, 2000, parent.Hash(), false, 0)

	require.ErrorIs(t, v.CommonValidate(parent, current), ErrInvalidNumber)
}

func TestCommonValidateRejectsWrongParentHash(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(10, 1000, 2000, types.Hash32{}, false, 0)
	current := buildHeaderMgr(11, 1010, 2000, types.HexToHash32("0xdead"), false, 0)

	require.ErrorIs(t, v.CommonValidate(parent, current), ErrInvalidParentHash)
}

func TestCommonValidateChecksDifficultyPreMerge(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(100, 1000, 1_000_000, types.Hash32{}, false, 0)
	current := buildHeaderMgr(101, 1010, 999_999, parent.Hash(), false, 0)

	require.ErrorIs(t, v.CommonValidate(parent, current), ErrInvalidDifficulty)
}

func TestCommonValidateAcceptsCorrectDifficulty(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(100, 1000, 1_000_000, types.Hash32{}, false, 0)
	expected, err := CalcDifficulty(parent, buildHeaderMgr(101, 1010, 0, parent.Hash(), false, 0))
	require.NoError(t, err)

	current := buildHeaderMgr(101, 1010, expected, parent.Hash(), false, 0)
	require.NoError(t, v.CommonValidate(parent, current))
}

func TestCommonValidateRequiresZeroDifficultyPostParis(t *testing.T) {
	v := NewValidator()
	parent := buildHeaderMgr(ParisBlock-1, 1000, 0, types.Hash32{}, false, 0)
	current := buildHeaderMgr(ParisBlock, 1010, 1, parent.Hash(), false, 0)

	require.ErrorIs(t, v.CommonValidate(parent, current), ErrNonZeroPoSDiff)

	currentZero := buildHeaderMgr(ParisBlock, 1010, 0, parent.Hash(), false, 0)
	require.NoError(t, v.CommonValidate(parent, currentZero))
}
