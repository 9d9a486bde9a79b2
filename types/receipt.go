package types

import (
	"fmt"

	"github.com/eth2030/eclipsemon/rlp"
)

// Receipt status values.
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt is decoded from the Geth debug_getRawReceipts wire form: an
// EIP-2718 typed envelope wrapping a 4-tuple [status, cumGasUsed, bloom,
// logs]. Only Logs is semantically used by the event processor; the rest
// is carried for completeness and for recomputing the receipts bloom.
type Receipt struct {
	Type              uint8
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             BloomFilter
	Logs              []*Log
}

// Succeeded reports whether the receipt's post-Byzantium status field
// equals 1.
func (r *Receipt) Succeeded() bool { return r.Status == ReceiptStatusSuccessful }

// receiptRLP is the on-the-wire 4-tuple shape of a receipt body, after any
// envelope byte has been stripped.
type receiptRLP struct {
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             BloomFilter
	Logs              []*logRLP
}

type logRLP struct {
	Address ContractAddr
	Topics  []Hash32
	Data    []byte
}

// EncodeRLP returns the raw wire bytes of the receipt, inverse of
// DecodeRawReceipt: the 4-tuple body, prefixed with the EIP-2718 envelope
// byte for typed variants.
func (r *Receipt) EncodeRLP() ([]byte, error) {
	logs := make([]*logRLP, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = &logRLP{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	body, err := rlp.EncodeToBytes(&receiptRLP{
		Status:            r.Status,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		Logs:              logs,
	})
	if err != nil {
		return nil, fmt.Errorf("eclipsemon: encode receipt: %w", err)
	}
	if r.Type == 0 {
		return body, nil
	}
	return append([]byte{r.Type}, body...), nil
}

// DecodeRawReceipt decodes one receipt from its raw wire bytes. Per
// EIP-2718, a leading byte of 0x01, 0x02 or 0x03 identifies a typed
// transaction's receipt and is stripped before RLP decoding; any other
// leading byte (a list prefix, >= 0xc0) means the receipt belongs to a
// legacy transaction and is decoded as-is.
func DecodeRawReceipt(data []byte) (*Receipt, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("eclipsemon: empty receipt data")
	}

	var typ uint8
	body := data
	switch data[0] {
	case 0x01, 0x02, 0x03:
		typ = data[0]
		body = data[1:]
		if len(body) == 0 {
			return nil, fmt.Errorf("eclipsemon: short typed receipt")
		}
	}

	var dec receiptRLP
	if err := rlp.DecodeBytes(body, &dec); err != nil {
		return nil, fmt.Errorf("eclipsemon: decode receipt: %w", err)
	}

	logs := make([]*Log, len(dec.Logs))
	for i, l := range dec.Logs {
		logs[i] = &Log{
			Address: l.Address,
			Topics:  l.Topics,
			Data:    l.Data,
		}
	}

	return &Receipt{
		Type:              typ,
		Status:            dec.Status,
		CumulativeGasUsed: dec.CumulativeGasUsed,
		Bloom:             dec.Bloom,
		Logs:              logs,
	}, nil
}
