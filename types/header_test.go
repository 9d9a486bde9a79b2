package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleHeader() *Header {
	return &Header{
		ParentHash:  HexToHash32("0x01"),
		UncleHash:   EmptyUncleHash,
		Coinbase:    HexToContractAddr("0x02"),
		Root:        HexToHash32("0x03"),
		TxHash:      HexToHash32("0x04"),
		ReceiptHash: HexToHash32("0x05"),
		Difficulty:  big.NewInt(1000),
		Number:      big.NewInt(1),
		GasLimit:    30_000_000,
		GasUsed:     21_000,
		Time:        1700000000,
		Extra:       []byte("extra"),
		Nonce:       BlockNonce{},
	}
}

func TestHeaderRLPRoundTrip(t *testing.T) {
	h := sampleHeader()
	raw, err := h.EncodeRLP()
	require.NoError(t, err)

	decoded, err := DecodeHeaderRLP(raw)
	require.NoError(t, err)
	require.Equal(t, h.ParentHash, decoded.ParentHash)
	require.Equal(t, h.Number.Uint64(), decoded.Number.Uint64())
	require.Equal(t, h.Time, decoded.Time)
	require.Nil(t, decoded.BaseFee)
}

func TestHeaderRLPOptionalFieldsRoundTrip(t *testing.T) {
	h := sampleHeader()
	h.BaseFee = big.NewInt(7)
	wh := HexToHash32("0x06")
	h.WithdrawalsHash = &wh

	raw, err := h.EncodeRLP()
	require.NoError(t, err)

	decoded, err := DecodeHeaderRLP(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded.BaseFee)
	require.Equal(t, uint64(7), decoded.BaseFee.Uint64())
	require.NotNil(t, decoded.WithdrawalsHash)
	require.Equal(t, wh, *decoded.WithdrawalsHash)
	require.Nil(t, decoded.BlobGasUsed)
}

// Property 1: hashing is a pure function of the raw wire bytes, not of the
// typed fields, and is stable across repeated calls (cache coherence).
func TestHeaderMgrHashConsistency(t *testing.T) {
	raw, err := sampleHeader().EncodeRLP()
	require.NoError(t, err)

	mgr, err := NewHeaderMgr(raw, 123)
	require.NoError(t, err)

	h1 := mgr.Hash()
	h2 := mgr.Hash()
	require.Equal(t, h1, h2)

	other, err := NewHeaderMgr(raw, 456)
	require.NoError(t, err)
	require.Equal(t, h1, other.Hash(), "hash must not depend on trustedTime")
}

// Property 7: hasUncle is exactly the inequality with the canonical empty
// hash, nothing else.
func TestHeaderMgrHasUncle(t *testing.T) {
	withUncle := sampleHeader()
	withUncle.UncleHash = HexToHash32("0xdeadbeef")
	raw, err := withUncle.EncodeRLP()
	require.NoError(t, err)
	mgr, err := NewHeaderMgr(raw, 0)
	require.NoError(t, err)
	require.True(t, mgr.HasUncle())

	noUncle := sampleHeader()
	raw2, err := noUncle.EncodeRLP()
	require.NoError(t, err)
	mgr2, err := NewHeaderMgr(raw2, 0)
	require.NoError(t, err)
	require.False(t, mgr2.HasUncle())
}

func TestHeaderMgrSetEstimateInvalidatesHashCache(t *testing.T) {
	raw, err := sampleHeader().EncodeRLP()
	require.NoError(t, err)
	mgr, err := NewHeaderMgr(raw, 0)
	require.NoError(t, err)

	before := mgr.Hash()
	require.NoError(t, mgr.SetEstimate(99, 1800000000, 5000, false))
	after := mgr.Hash()

	require.NotEqual(t, before, after)
	require.Equal(t, uint64(99), mgr.Number())
	require.Equal(t, uint64(5000), mgr.Difficulty())
	require.False(t, mgr.HasUncle())
}
