package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReceipt(typ uint8) *Receipt {
	logs := []*Log{
		{
			Address: HexToContractAddr("0xaa"),
			Topics:  []Hash32{HexToHash32("0x01"), HexToHash32("0x02")},
			Data:    []byte("payload"),
		},
	}
	return &Receipt{
		Type:              typ,
		Status:            ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		Bloom:             LogsBloom(logs),
		Logs:              logs,
	}
}

func TestReceiptEncodeDecodeRoundTripLegacy(t *testing.T) {
	r := sampleReceipt(0)
	raw, err := r.EncodeRLP()
	require.NoError(t, err)

	decoded, err := DecodeRawReceipt(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(0), decoded.Type)
	require.True(t, decoded.Succeeded())
	require.Equal(t, r.CumulativeGasUsed, decoded.CumulativeGasUsed)
	require.Len(t, decoded.Logs, 1)
	require.Equal(t, r.Logs[0].Address, decoded.Logs[0].Address)
	require.Equal(t, r.Logs[0].Topics, decoded.Logs[0].Topics)
}

func TestReceiptEncodeDecodeRoundTripTyped(t *testing.T) {
	r := sampleReceipt(0x02)
	raw, err := r.EncodeRLP()
	require.NoError(t, err)
	require.Equal(t, byte(0x02), raw[0])

	decoded, err := DecodeRawReceipt(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(0x02), decoded.Type)
}

func TestDecodeRawReceiptRejectsEmpty(t *testing.T) {
	_, err := DecodeRawReceipt(nil)
	require.Error(t, err)
}
