package consensus

import (
	"testing"

	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

func TestOnChkptUpdSetsFloorFromMedian(t *testing.T) {
	d := NewDiffChecker(64, 3600) // 64/128 == 50%
	d.OnChkptUpd(1 << 14)         // median = 16384
	require.Equal(t, (uint64(1<<14)>>7)*64, d.MinDiff())
}

func TestCheckDifficultyRejectsNonIncreasingTrustedTime(t *testing.T) {
	d := NewDiffChecker(64, 3600)
	parent := buildHeaderMgr(100, 1000, 1_000_000, types.Hash32{}, false, 5000)
	current := buildHeaderMgr(101, 1010, 1_000_000, parent.Hash(), false, 5000)

	require.False(t, d.CheckDifficulty(parent, current))
}

func TestCheckDifficultyRejectsTooSlowArrival(t *testing.T) {
	d := NewDiffChecker(64, 100)
	parent := buildHeaderMgr(100, 1000, 1_000_000, types.Hash32{}, false, 5000)
	current := buildHeaderMgr(101, 1010, 1_000_000, parent.Hash(), false, 5200)

	require.False(t, d.CheckDifficulty(parent, current))
}

func TestCheckDifficultyRejectsBelowFloor(t *testing.T) {
	d := NewDiffChecker(64, 3600)
	d.OnChkptUpd(1 << 20)
	parent := buildHeaderMgr(100, 1000, 1_000_000, types.Hash32{}, false, 5000)
	current := buildHeaderMgr(101, 1010, 1, parent.Hash(), false, 5010)

	require.False(t, d.CheckDifficulty(parent, current))
}

func TestCheckDifficultyAlwaysTruePostParis(t *testing.T) {
	d := NewDiffChecker(64, 1)
	parent := buildHeaderMgr(ParisBlock-1, 1000, 0, types.Hash32{}, false, 5000)
	current := buildHeaderMgr(ParisBlock, 9999999, 0, parent.Hash(), false, 5000)

	require.True(t, d.CheckDifficulty(parent, current))
}

func TestCheckEstDifficultyAlwaysTruePostParis(t *testing.T) {
	d := NewDiffChecker(64, 1)
	parent := buildHeaderMgr(ParisBlock-1, 1000, 1_000_000, types.Hash32{}, false, 5000)
	require.True(t, d.CheckEstDifficulty(parent, 999999999))
}

func TestCheckEstDifficultyRejectsStaleWait(t *testing.T) {
	d := NewDiffChecker(64, 100)
	parent := buildHeaderMgr(GrayGlacierBlock, 1000, 1_000_000, types.Hash32{}, false, 5000)
	require.False(t, d.CheckEstDifficulty(parent, 5000+101))
}

func TestCheckEstDifficultyUnsupportedBeforeGrayGlacier(t *testing.T) {
	d := NewDiffChecker(64, 1_000_000)
	parent := buildHeaderMgr(GrayGlacierBlock-2, 1000, 1_000_000, types.Hash32{}, false, 5000)
	require.False(t, d.CheckEstDifficulty(parent, 5010))
}
