package types

import (
	"math/big"

	"github.com/eth2030/eclipsemon/rlp"
)

// EncodeRLP returns the RLP encoding of the header in Yellow Paper field
// order: [ParentHash, UncleHash, Coinbase, Root, TxHash, ReceiptHash,
// Bloom, Difficulty, Number, GasLimit, GasUsed, Time, Extra, MixDigest,
// Nonce, BaseFee, WithdrawalsHash, BlobGasUsed, ExcessBlobGas,
// ParentBeaconRoot, RequestsHash]. Optional fields are appended only if
// present, and only once every preceding optional field is also present.
func (h *Header) EncodeRLP() ([]byte, error) {
	var items []interface{}

	items = append(items, h.ParentHash)
	items = append(items, h.UncleHash)
	items = append(items, h.Coinbase)
	items = append(items, h.Root)
	items = append(items, h.TxHash)
	items = append(items, h.ReceiptHash)
	items = append(items, h.Bloom)
	items = append(items, bigIntOrZero(h.Difficulty))
	items = append(items, bigIntOrZero(h.Number))
	items = append(items, h.GasLimit)
	items = append(items, h.GasUsed)
	items = append(items, h.Time)
	items = append(items, h.Extra)
	items = append(items, h.MixDigest)
	items = append(items, h.Nonce)

	if h.BaseFee != nil {
		items = append(items, h.BaseFee)
		if h.WithdrawalsHash != nil {
			items = append(items, *h.WithdrawalsHash)
			if h.BlobGasUsed != nil {
				items = append(items, *h.BlobGasUsed)
				if h.ExcessBlobGas != nil {
					items = append(items, *h.ExcessBlobGas)
					if h.ParentBeaconRoot != nil {
						items = append(items, *h.ParentBeaconRoot)
						if h.RequestsHash != nil {
							items = append(items, *h.RequestsHash)
						}
					}
				}
			}
		}
	}

	return encodeRLPList(items)
}

// encodeRLPList encodes each item and wraps the concatenated payload in an
// RLP list header.
func encodeRLPList(items []interface{}) ([]byte, error) {
	var payload []byte
	for _, item := range items {
		enc, err := rlp.EncodeToBytes(item)
		if err != nil {
			return nil, err
		}
		payload = append(payload, enc...)
	}
	return rlp.WrapList(payload), nil
}

// bigIntOrZero returns v if non-nil, otherwise a zero big.Int.
func bigIntOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// DecodeHeaderRLP decodes a single RLP-encoded header.
func DecodeHeaderRLP(data []byte) (*Header, error) {
	s := rlp.NewStreamFromBytes(data)
	if _, err := s.List(); err != nil {
		return nil, err
	}

	h := &Header{}
	var err error

	if err := decodeHash32(s, &h.ParentHash); err != nil {
		return nil, err
	}
	if err := decodeHash32(s, &h.UncleHash); err != nil {
		return nil, err
	}
	if err := decodeContractAddr(s, &h.Coinbase); err != nil {
		return nil, err
	}
	if err := decodeHash32(s, &h.Root); err != nil {
		return nil, err
	}
	if err := decodeHash32(s, &h.TxHash); err != nil {
		return nil, err
	}
	if err := decodeHash32(s, &h.ReceiptHash); err != nil {
		return nil, err
	}
	if err := decodeBloomFilter(s, &h.Bloom); err != nil {
		return nil, err
	}

	h.Difficulty, err = s.BigInt()
	if err != nil {
		return nil, err
	}
	h.Number, err = s.BigInt()
	if err != nil {
		return nil, err
	}
	h.GasLimit, err = s.Uint64()
	if err != nil {
		return nil, err
	}
	h.GasUsed, err = s.Uint64()
	if err != nil {
		return nil, err
	}
	h.Time, err = s.Uint64()
	if err != nil {
		return nil, err
	}
	h.Extra, err = s.Bytes()
	if err != nil {
		return nil, err
	}
	if err := decodeHash32(s, &h.MixDigest); err != nil {
		return nil, err
	}
	if err := decodeBlockNonce(s, &h.Nonce); err != nil {
		return nil, err
	}

	if !s.AtListEnd() {
		h.BaseFee, err = s.BigInt()
		if err != nil {
			return nil, err
		}
	}
	if !s.AtListEnd() {
		var wh Hash32
		if err := decodeHash32(s, &wh); err != nil {
			return nil, err
		}
		h.WithdrawalsHash = &wh
	}
	if !s.AtListEnd() {
		bgu, err := s.Uint64()
		if err != nil {
			return nil, err
		}
		h.BlobGasUsed = &bgu
	}
	if !s.AtListEnd() {
		ebg, err := s.Uint64()
		if err != nil {
			return nil, err
		}
		h.ExcessBlobGas = &ebg
	}
	if !s.AtListEnd() {
		var pbr Hash32
		if err := decodeHash32(s, &pbr); err != nil {
			return nil, err
		}
		h.ParentBeaconRoot = &pbr
	}
	if !s.AtListEnd() {
		var rh Hash32
		if err := decodeHash32(s, &rh); err != nil {
			return nil, err
		}
		h.RequestsHash = &rh
	}

	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeHash32(s *rlp.Stream, h *Hash32) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(h[Hash32Length-len(b):], b)
	return nil
}

func decodeContractAddr(s *rlp.Stream, a *ContractAddr) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(a[ContractAddrLen-len(b):], b)
	return nil
}

func decodeBloomFilter(s *rlp.Stream, bl *BloomFilter) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(bl[BloomLength-len(b):], b)
	return nil
}

func decodeBlockNonce(s *rlp.Stream, n *BlockNonce) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(n[NonceLength-len(b):], b)
	return nil
}
