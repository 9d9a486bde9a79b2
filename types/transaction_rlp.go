package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/eth2030/eclipsemon/rlp"
	"golang.org/x/crypto/sha3"
)

var errShortTypedTx = errors.New("eclipsemon: typed transaction too short")

// ---- RLP wire shapes, one per variant ----

type legacyTxRLP struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       []byte
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

type accessTupleRLP struct {
	Address     ContractAddr
	StorageKeys []Hash32
}

type accessListTxRLP struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         []byte
	Value      *big.Int
	Data       []byte
	AccessList []accessTupleRLP
	V, R, S    *big.Int
}

type dynamicFeeTxRLP struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         []byte
	Value      *big.Int
	Data       []byte
	AccessList []accessTupleRLP
	V, R, S    *big.Int
}

type blobTxRLP struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         ContractAddr
	Value      *big.Int
	Data       []byte
	AccessList []accessTupleRLP
	BlobFeeCap *big.Int
	BlobHashes []Hash32
	V, R, S    *big.Int
}

// ---- Decoding ----

// DecodeTxRLP decodes a single RLP-encoded transaction. A leading byte of at
// most 0x7f (and not 0x00) is an EIP-2718 type prefix; a leading byte of
// 0x00 is treated as an explicit legacy-type prefix; anything >= 0xc0 is an
// un-prefixed legacy RLP list.
func DecodeTxRLP(data []byte) (*Transaction, error) {
	if len(data) == 0 {
		return nil, errors.New("eclipsemon: empty transaction data")
	}
	if data[0] <= 0x7f && data[0] != 0 {
		return decodeTypedTx(data[0], data[1:])
	}
	if data[0] >= 0xc0 {
		return decodeLegacyTx(data)
	}
	if data[0] == 0x00 {
		if len(data) < 2 {
			return nil, errShortTypedTx
		}
		return decodeLegacyTx(data[1:])
	}
	return nil, fmt.Errorf("eclipsemon: invalid transaction encoding, first byte: 0x%02x", data[0])
}

func decodeTypedTx(txType byte, payload []byte) (*Transaction, error) {
	if len(payload) == 0 {
		return nil, errShortTypedTx
	}
	switch txType {
	case AccessListTxType:
		return decodeAccessListTx(payload)
	case DynamicFeeTxType:
		return decodeDynamicFeeTx(payload)
	case BlobTxType:
		return decodeBlobTx(payload)
	default:
		return nil, fmt.Errorf("eclipsemon: unsupported transaction type: 0x%02x", txType)
	}
}

func decodeLegacyTx(data []byte) (*Transaction, error) {
	var dec legacyTxRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("eclipsemon: decode legacy tx: %w", err)
	}
	inner := &LegacyTx{
		Nonce:    dec.Nonce,
		GasPrice: dec.GasPrice,
		Gas:      dec.Gas,
		To:       bytesToContractAddrPtr(dec.To),
		Value:    dec.Value,
		Data:     dec.Data,
		V:        dec.V,
		R:        dec.R,
		S:        dec.S,
	}
	return NewTransaction(inner), nil
}

func decodeAccessListTx(data []byte) (*Transaction, error) {
	var dec accessListTxRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("eclipsemon: decode access list tx: %w", err)
	}
	inner := &AccessListTx{
		ChainID:    dec.ChainID,
		Nonce:      dec.Nonce,
		GasPrice:   dec.GasPrice,
		Gas:        dec.Gas,
		To:         bytesToContractAddrPtr(dec.To),
		Value:      dec.Value,
		Data:       dec.Data,
		AccessList: decodeAccessList(dec.AccessList),
		V:          dec.V,
		R:          dec.R,
		S:          dec.S,
	}
	return NewTransaction(inner), nil
}

func decodeDynamicFeeTx(data []byte) (*Transaction, error) {
	var dec dynamicFeeTxRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("eclipsemon: decode dynamic fee tx: %w", err)
	}
	inner := &DynamicFeeTx{
		ChainID:    dec.ChainID,
		Nonce:      dec.Nonce,
		GasTipCap:  dec.GasTipCap,
		GasFeeCap:  dec.GasFeeCap,
		Gas:        dec.Gas,
		To:         bytesToContractAddrPtr(dec.To),
		Value:      dec.Value,
		Data:       dec.Data,
		AccessList: decodeAccessList(dec.AccessList),
		V:          dec.V,
		R:          dec.R,
		S:          dec.S,
	}
	return NewTransaction(inner), nil
}

func decodeBlobTx(data []byte) (*Transaction, error) {
	var dec blobTxRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("eclipsemon: decode blob tx: %w", err)
	}
	inner := &BlobTx{
		ChainID:    dec.ChainID,
		Nonce:      dec.Nonce,
		GasTipCap:  dec.GasTipCap,
		GasFeeCap:  dec.GasFeeCap,
		Gas:        dec.Gas,
		To:         dec.To,
		Value:      dec.Value,
		Data:       dec.Data,
		AccessList: decodeAccessList(dec.AccessList),
		BlobFeeCap: dec.BlobFeeCap,
		BlobHashes: dec.BlobHashes,
		V:          dec.V,
		R:          dec.R,
		S:          dec.S,
	}
	return NewTransaction(inner), nil
}

// hashRLP computes the Keccak-256 hash of tx's canonical wire encoding:
// the raw list encoding for Legacy, the type-byte-prefixed list encoding
// for every typed variant.
func (tx *Transaction) hashRLP() Hash32 {
	var enc []byte
	switch inner := tx.inner.(type) {
	case *LegacyTx:
		enc, _ = rlp.EncodeToBytes(legacyTxRLP{
			Nonce: inner.Nonce, GasPrice: inner.GasPrice, Gas: inner.Gas,
			To: addrBytes(inner.To), Value: inner.Value, Data: inner.Data,
			V: inner.V, R: inner.R, S: inner.S,
		})
	case *AccessListTx:
		payload, _ := rlp.EncodeToBytes(accessListTxRLP{
			ChainID: inner.ChainID, Nonce: inner.Nonce, GasPrice: inner.GasPrice,
			Gas: inner.Gas, To: addrBytes(inner.To), Value: inner.Value, Data: inner.Data,
			AccessList: encodeAccessList(inner.AccessList), V: inner.V, R: inner.R, S: inner.S,
		})
		enc = append([]byte{AccessListTxType}, payload...)
	case *DynamicFeeTx:
		payload, _ := rlp.EncodeToBytes(dynamicFeeTxRLP{
			ChainID: inner.ChainID, Nonce: inner.Nonce, GasTipCap: inner.GasTipCap,
			GasFeeCap: inner.GasFeeCap, Gas: inner.Gas, To: addrBytes(inner.To),
			Value: inner.Value, Data: inner.Data, AccessList: encodeAccessList(inner.AccessList),
			V: inner.V, R: inner.R, S: inner.S,
		})
		enc = append([]byte{DynamicFeeTxType}, payload...)
	case *BlobTx:
		payload, _ := rlp.EncodeToBytes(blobTxRLP{
			ChainID: inner.ChainID, Nonce: inner.Nonce, GasTipCap: inner.GasTipCap,
			GasFeeCap: inner.GasFeeCap, Gas: inner.Gas, To: inner.To, Value: inner.Value,
			Data: inner.Data, AccessList: encodeAccessList(inner.AccessList),
			BlobFeeCap: inner.BlobFeeCap, BlobHashes: inner.BlobHashes,
			V: inner.V, R: inner.R, S: inner.S,
		})
		enc = append([]byte{BlobTxType}, payload...)
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(enc)
	var h Hash32
	d.Sum(h[:0])
	return h
}

func addrBytes(a *ContractAddr) []byte {
	if a == nil {
		return nil
	}
	return a.Bytes()
}

func encodeAccessList(al AccessList) []accessTupleRLP {
	if al == nil {
		return nil
	}
	out := make([]accessTupleRLP, len(al))
	for i, t := range al {
		out[i] = accessTupleRLP{Address: t.Address, StorageKeys: t.StorageKeys}
	}
	return out
}
