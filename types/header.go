package types

import (
	"math/big"
	"sync/atomic"

	"golang.org/x/crypto/sha3"
)

// Header is the typed Ethereum block header, in Yellow Paper field order
// extended with the post-London optional fields.
type Header struct {
	ParentHash  Hash32
	UncleHash   Hash32
	Coinbase    ContractAddr
	Root        Hash32
	TxHash      Hash32
	ReceiptHash Hash32
	Bloom       BloomFilter
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash32
	Nonce       BlockNonce

	// EIP-1559
	BaseFee *big.Int

	// EIP-4895: Beacon chain push withdrawals
	WithdrawalsHash *Hash32

	// EIP-4844: Shard blob transactions
	BlobGasUsed   *uint64
	ExcessBlobGas *uint64

	// EIP-4788: Beacon block root in the EVM
	ParentBeaconRoot *Hash32

	// EIP-7685: General purpose execution layer requests
	RequestsHash *Hash32
}

// HeaderMgr owns one parsed header: the raw RLP bytes it was built from,
// the typed fields parsed out of those bytes, and the metadata the monitor
// attaches on receipt (trustedTime). Once constructed, every typed field
// agrees with Raw -- there are no independent mutation paths except the
// estimator setters used for difficulty pre-checks, which keep Raw and the
// typed copy in lockstep.
type HeaderMgr struct {
	Raw         []byte
	Header      *Header
	trustedTime TrustedTimestamp // 0 during Bootstrap-I

	hash atomic.Pointer[Hash32]
}

// NewHeaderMgr parses raw RLP header bytes and records trustedTime (the
// monitor's receive-time; pass 0 during Bootstrap-I, per the data model).
func NewHeaderMgr(raw []byte, trustedTime TrustedTimestamp) (*HeaderMgr, error) {
	h, err := DecodeHeaderRLP(raw)
	if err != nil {
		return nil, err
	}
	return &HeaderMgr{Raw: raw, Header: h, trustedTime: trustedTime}, nil
}

// Hash returns the Keccak-256 hash of the raw RLP bytes the header was
// constructed from -- not a re-encoding of the typed fields, so the hash
// is bit-exact with whatever was actually received on the wire.
func (m *HeaderMgr) Hash() Hash32 {
	if cached := m.hash.Load(); cached != nil {
		return *cached
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(m.Raw)
	var hash Hash32
	d.Sum(hash[:0])
	m.hash.Store(&hash)
	return hash
}

// Number returns the header's block number.
func (m *HeaderMgr) Number() uint64 { return m.Header.Number.Uint64() }

// Time returns the header's self-reported timestamp.
func (m *HeaderMgr) Time() uint64 { return m.Header.Time }

// Difficulty returns the header's self-reported difficulty.
func (m *HeaderMgr) Difficulty() uint64 { return m.Header.Difficulty.Uint64() }

// TrustedTime returns the time the monitor received this header, per its
// trusted clock (0 during Bootstrap-I).
func (m *HeaderMgr) TrustedTime() TrustedTimestamp { return m.trustedTime }

// ParentHash returns a reference to the header's claimed parent hash.
func (m *HeaderMgr) ParentHash() Hash32 { return m.Header.ParentHash }

// ReceiptsRoot returns the header's claimed receipts trie root.
func (m *HeaderMgr) ReceiptsRoot() Hash32 { return m.Header.ReceiptHash }

// LogsBloom returns the header's 2048-bit logs bloom.
func (m *HeaderMgr) LogsBloom() BloomFilter { return m.Header.Bloom }

// HasUncle reports whether the header claims at least one uncle: true iff
// UncleHash differs from the canonical empty-uncle-list hash. This is the
// only supported test for "has uncles".
func (m *HeaderMgr) HasUncle() bool {
	return m.Header.UncleHash != EmptyUncleHash
}

// SetEstimate overwrites Number, Time, Difficulty and the uncle hash
// in-place and re-encodes Raw to match. The hash cache is invalidated. The
// difficulty estimator does not use it; it works on a HeaderFacts value.
func (m *HeaderMgr) SetEstimate(number, timestamp, difficulty uint64, hasUncle bool) error {
	h := *m.Header
	h.Number = new(big.Int).SetUint64(number)
	h.Time = timestamp
	h.Difficulty = new(big.Int).SetUint64(difficulty)
	if hasUncle {
		h.UncleHash = Hash32{0x01}
	} else {
		h.UncleHash = EmptyUncleHash
	}
	raw, err := h.EncodeRLP()
	if err != nil {
		return err
	}
	m.Header = &h
	m.Raw = raw
	m.hash.Store(nil)
	return nil
}
