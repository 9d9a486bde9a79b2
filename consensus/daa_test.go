package consensus

import (
	"testing"

	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

// Property 6 (Homestead worked example): with a 10-second gap the formula's
// own "x > base" branch is not taken (x == base == 1), so the adjustment
// term is zero and only the ice-age bomb contributes: D + 2^9.
func TestHomesteadDifficultyFlatAdjustmentBranch(t *testing.T) {
	const D = uint64(100_000_000)
	parent := HeaderFacts{Number: HomesteadBlock, Time: 1000, Difficulty: D}
	current := HeaderFacts{Number: HomesteadBlock + 1, Time: 1010}

	got := homesteadDifficulty(parent, current)
	require.Equal(t, D+(1<<9), got)
}

// Same formula's reducing branch, reached with a larger gap (x=2 > base=1),
// produces the D - D/2048 + 2^9 shape.
func TestHomesteadDifficultyReducingBranch(t *testing.T) {
	const D = uint64(100_000_000)
	parent := HeaderFacts{Number: HomesteadBlock, Time: 1000, Difficulty: D}
	current := HeaderFacts{Number: HomesteadBlock + 1, Time: 1025}

	got := homesteadDifficulty(parent, current)
	want := D - D/2048 + (1 << 9)
	require.Equal(t, want, got)
}

func TestFrontierDifficultyFastBlockIncreases(t *testing.T) {
	const D = uint64(1_000_000)
	parent := HeaderFacts{Number: 100, Time: 1000, Difficulty: D}
	current := HeaderFacts{Number: 101, Time: 1005}

	got := frontierDifficulty(parent, current)
	require.Greater(t, got, D)
}

func TestFrontierDifficultyFloorsAtMinimum(t *testing.T) {
	parent := HeaderFacts{Number: 100, Time: 1000, Difficulty: minimumDifficulty}
	current := HeaderFacts{Number: 101, Time: 2000}

	got := frontierDifficulty(parent, current)
	require.Equal(t, uint64(minimumDifficulty), got)
}

func TestByzantiumDifficultyConsidersUncle(t *testing.T) {
	const D = uint64(100_000_000)
	withUncle := HeaderFacts{Number: ByzantiumBlock, Time: 1000, Difficulty: D, HasUncle: true}
	withoutUncle := withUncle
	withoutUncle.HasUncle = false
	current := HeaderFacts{Number: ByzantiumBlock + 1, Time: 1010}

	got1 := byzantiumDifficulty(withUncle, current, true)
	got2 := byzantiumDifficulty(withoutUncle, current, true)
	require.NotEqual(t, got1, got2)
}

// TestBombDelaySchedulePerFork pins down every fork tier in the ice-age
// delay table, not just a sampled subset: each fork that pushed the bomb
// back installed its own constant rather than extending the previous
// one, so a gap here silently under- or over-delays a whole block range.
func TestBombDelaySchedulePerFork(t *testing.T) {
	require.Equal(t, uint64(0), bombDelayFor(0))
	require.Equal(t, uint64(0), bombDelayFor(ByzantiumBlock-1))
	require.Equal(t, uint64(3_000_000), bombDelayFor(ByzantiumBlock))
	require.Equal(t, uint64(5_000_000), bombDelayFor(ConstantinopleBlock))
	require.Equal(t, uint64(9_000_000), bombDelayFor(MuirGlacierBlock))
	require.Equal(t, uint64(9_700_000), bombDelayFor(LondonBlock))
	require.Equal(t, uint64(10_700_000), bombDelayFor(ArrowGlacierBlock))
	require.Equal(t, uint64(11_400_000), bombDelayFor(GrayGlacierBlock))
	require.Equal(t, uint64(11_400_000), bombDelayFor(GrayGlacierBlock+1_000_000),
		"the last-scheduled delay holds for every later block, including post-GrayGlacier PoW headers")
}

// TestEstimateDifficultyOmitsMaxCheck confirms the estimator's forward
// projection runs without the 99-period cap that CalcDifficulty's own
// Byzantium-family call applies: a projected gap far larger than the cap
// must still show its full, uncapped reducing term.
func TestEstimateDifficultyOmitsMaxCheck(t *testing.T) {
	const D = uint64(100_000_000_000)
	parent := HeaderFacts{Number: GrayGlacierBlock, Time: 1000, Difficulty: D}
	hugeGap := HeaderFacts{Number: GrayGlacierBlock + 1, Time: 1000 + 150*9}

	capped := byzantiumDifficulty(parent, hugeGap, true)
	uncapped := byzantiumDifficulty(parent, hugeGap, false)
	require.Greater(t, capped, uncapped,
		"hasMaxCheck=true clamps the reducing term to 99 periods, so it subtracts less and lands higher; "+
			"the estimator's hasMaxCheck=false path must not clamp")

	est, err := EstimateDifficulty(buildHeaderMgr(GrayGlacierBlock, 1000, D, types.Hash32{}, false, 0), hugeGap.Time)
	require.NoError(t, err)
	require.Equal(t, uncapped, est)
}
