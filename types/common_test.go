package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash32HexRoundTrip(t *testing.T) {
	h := HexToHash32("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.Equal(t, "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", h.Hex())
	require.False(t, h.IsZero())
}

func TestHash32LeftPads(t *testing.T) {
	h := BytesToHash32([]byte{0xab})
	require.Equal(t, byte(0xab), h[Hash32Length-1])
	for i := 0; i < Hash32Length-1; i++ {
		require.Equal(t, byte(0), h[i])
	}
}

func TestHash32TruncatesFromLeft(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	h := BytesToHash32(long)
	require.Equal(t, long[8:], h.Bytes())
}

func TestContractAddrRoundTrip(t *testing.T) {
	a := HexToContractAddr("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.Equal(t, "0x0102030405060708090a0b0c0d0e0f1011121314", a.Hex())
	require.False(t, a.IsZero())
}

func TestZeroValuesAreZero(t *testing.T) {
	var h Hash32
	require.True(t, h.IsZero())
	var a ContractAddr
	require.True(t, a.IsZero())
}

func TestEmptyRootAndUncleHashesAreDistinct(t *testing.T) {
	require.NotEqual(t, EmptyRootHash, EmptyUncleHash)
}
