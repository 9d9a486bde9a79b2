package types

import (
	"math/big"
	"sync/atomic"
)

// Transaction type constants (EIP-2718 envelope byte values).
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
	SetCodeTxType    = 0x04
)

// Transaction wraps one of the TxData variants with cached derived values.
// Modeled as a closed sum type selected by the envelope byte, not a chain
// of conditional casts: the envelope byte picks the variant once, at
// decode time, and every accessor afterwards dispatches through the
// TxData interface.
type Transaction struct {
	inner TxData
	hash  atomic.Pointer[Hash32]
}

// TxData is the underlying data of one transaction variant.
type TxData interface {
	txType() byte
	accessList() AccessList
	data() []byte
	to() *ContractAddr
}

// AccessList is a list of address-slot pairs accessed by a transaction.
type AccessList []AccessTuple

// AccessTuple is a single address and its accessed storage slots.
type AccessTuple struct {
	Address     ContractAddr
	StorageKeys []Hash32
}

// LegacyTx is a legacy (type 0x00) transaction. Its RLP field positions
// are [nonce(0), gasPrice(1), gas(2), to(3), value(4), data(5), v, r, s].
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *ContractAddr
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

func (tx *LegacyTx) txType() byte             { return LegacyTxType }
func (tx *LegacyTx) accessList() AccessList   { return nil }
func (tx *LegacyTx) data() []byte             { return tx.Data }
func (tx *LegacyTx) to() *ContractAddr        { return tx.To }

// AccessListTx is an EIP-2930 (type 0x01) transaction. Field positions
// (after the leading type byte is stripped) are [chainId(0), nonce(1),
// gasPrice(2), gas(3), to(4), value(5), data(6), accessList, v, r, s].
type AccessListTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *ContractAddr
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

func (tx *AccessListTx) txType() byte           { return AccessListTxType }
func (tx *AccessListTx) accessList() AccessList { return tx.AccessList }
func (tx *AccessListTx) data() []byte           { return tx.Data }
func (tx *AccessListTx) to() *ContractAddr      { return tx.To }

// DynamicFeeTx is an EIP-1559 (type 0x02) transaction. Field positions are
// [chainId(0), nonce(1), gasTipCap(2), gasFeeCap(3), gas(4), to(5),
// value(6), data(7), accessList, v, r, s].
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *ContractAddr
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

func (tx *DynamicFeeTx) txType() byte           { return DynamicFeeTxType }
func (tx *DynamicFeeTx) accessList() AccessList { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte           { return tx.Data }
func (tx *DynamicFeeTx) to() *ContractAddr      { return tx.To }

// BlobTx is an EIP-4844 (type 0x03) blob-carrying transaction.
type BlobTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         ContractAddr
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *big.Int
	BlobHashes []Hash32
	V, R, S    *big.Int
}

func (tx *BlobTx) txType() byte           { return BlobTxType }
func (tx *BlobTx) accessList() AccessList { return tx.AccessList }
func (tx *BlobTx) data() []byte           { return tx.Data }
func (tx *BlobTx) to() *ContractAddr      { addr := tx.To; return &addr }

// NewTransaction wraps inner in a Transaction.
func NewTransaction(inner TxData) *Transaction {
	return &Transaction{inner: inner}
}

// Type returns the transaction's envelope type.
func (tx *Transaction) Type() uint8 { return tx.inner.txType() }

// AccessList returns the transaction's access list, nil for Legacy.
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }

// Data returns the transaction's input payload.
func (tx *Transaction) Data() []byte { return tx.inner.data() }

// To returns the recipient address, or nil for contract creation.
func (tx *Transaction) To() *ContractAddr { return tx.inner.to() }

// Hash returns the Keccak-256 hash of the transaction's RLP encoding,
// caching on first call.
func (tx *Transaction) Hash() Hash32 {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	h := tx.hashRLP()
	tx.hash.Store(&h)
	return h
}

func bytesToContractAddrPtr(b []byte) *ContractAddr {
	if b == nil {
		return nil
	}
	a := BytesToContractAddr(b)
	return &a
}

func decodeAccessList(src []accessTupleRLP) AccessList {
	if src == nil {
		return nil
	}
	out := make(AccessList, len(src))
	for i, t := range src {
		out[i] = AccessTuple{Address: t.Address, StorageKeys: t.StorageKeys}
	}
	return out
}
