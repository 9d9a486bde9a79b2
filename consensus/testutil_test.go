package consensus

import (
	"math/big"

	"github.com/eth2030/eclipsemon/types"
)

// buildHeaderMgr constructs a HeaderMgr for a synthetic header with the
// given fields, wiring ParentHash and UncleHash as requested.
func buildHeaderMgr(number, timestamp, difficulty uint64, parentHash types.Hash32, hasUncle bool, trustedTime uint64) *types.HeaderMgr {
	uncleHash := types.EmptyUncleHash
	if hasUncle {
		uncleHash = types.HexToHash32("0x01")
	}
	h := &types.Header{
		ParentHash: parentHash,
		UncleHash:  uncleHash,
		Difficulty: new(big.Int).SetUint64(difficulty),
		Number:     new(big.Int).SetUint64(number),
		Time:       timestamp,
	}
	raw, err := h.EncodeRLP()
	if err != nil {
		panic(err)
	}
	mgr, err := types.NewHeaderMgr(raw, trustedTime)
	if err != nil {
		panic(err)
	}
	return mgr
}
