package types

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// BloomBitLength is the number of bits in a bloom filter (2048).
const BloomBitLength = 8 * BloomLength

// probesFromHash derives the three 11-bit probe indices from a 32-byte
// Keccak-256 output: byte pairs (0,1), (2,3), (4,5), each interpreted as a
// big-endian uint16 masked to 11 bits. No hashing happens here -- the
// caller is expected to already hold a Keccak-256 digest.
func probesFromHash(h Hash32) [3]uint {
	var bits [3]uint
	for i := 0; i < 3; i++ {
		bits[i] = uint(binary.BigEndian.Uint16(h[2*i:])) & 0x7FF
	}
	return bits
}

// keccak256 is a self-contained Keccak-256 helper so that types does not
// import the crypto package (crypto imports types for Hash32, so the
// reverse import would cycle).
func keccak256(data []byte) Hash32 {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	var out Hash32
	d.Sum(out[:0])
	return out
}

// setBit sets the bloom bit for probe index bit (0..2047) using the
// Ethereum big-endian bit-ordering convention: bit 0 is the least
// significant bit of the last byte of the 256-byte array.
func setBit(bloom *BloomFilter, bit uint) {
	byteIdx := BloomLength - 1 - bit/8
	bitIdx := bit % 8
	bloom[byteIdx] |= 1 << bitIdx
}

func testBit(bloom BloomFilter, bit uint) bool {
	byteIdx := BloomLength - 1 - bit/8
	bitIdx := bit % 8
	return bloom[byteIdx]&(1<<bitIdx) != 0
}

// BloomAdd hashes data with Keccak-256 and sets the three derived bits in
// the bloom filter.
func BloomAdd(bloom *BloomFilter, data []byte) {
	h := keccak256(data)
	for _, bit := range probesFromHash(h) {
		setBit(bloom, bit)
	}
}

// AreHashesInBloom returns true iff every hash in hashes has all three of
// its probe bits set in bloom. hashes are already Keccak-256 digests (e.g.
// an EventDescription's derivedHashes) and are not re-hashed. This is a
// pre-filter: a true result may still be a false positive and must be
// confirmed against the receipts trie root.
func AreHashesInBloom(hashes []Hash32, bloom BloomFilter) bool {
	for _, h := range hashes {
		for _, bit := range probesFromHash(h) {
			if !testBit(bloom, bit) {
				return false
			}
		}
	}
	return true
}

// LogsBloom computes the bloom filter for a set of logs by adding each
// log's address and topics.
func LogsBloom(logs []*Log) BloomFilter {
	var bloom BloomFilter
	for _, lg := range logs {
		BloomAdd(&bloom, lg.Address.Bytes())
		for _, topic := range lg.Topics {
			BloomAdd(&bloom, topic.Bytes())
		}
	}
	return bloom
}

// CreateBloom OR-combines the bloom of each receipt in receipts.
func CreateBloom(receipts []*Receipt) BloomFilter {
	var bloom BloomFilter
	for _, r := range receipts {
		bloom.Or(r.Bloom)
	}
	return bloom
}

// BytesToBloomFilter converts a byte slice to a BloomFilter, left-padding
// or truncating from the left as necessary to fill exactly 256 bytes.
func BytesToBloomFilter(b []byte) BloomFilter {
	var bloom BloomFilter
	bloom.SetBytes(b)
	return bloom
}

// Bytes returns a copy of the bloom filter as a byte slice.
func (b BloomFilter) Bytes() []byte {
	out := make([]byte, BloomLength)
	copy(out, b[:])
	return out
}

// SetBytes sets the bloom filter from a byte slice.
func (b *BloomFilter) SetBytes(data []byte) {
	*b = BloomFilter{}
	if len(data) > BloomLength {
		data = data[len(data)-BloomLength:]
	}
	copy(b[BloomLength-len(data):], data)
}

// Add inserts data into the bloom filter.
func (b *BloomFilter) Add(data []byte) { BloomAdd(b, data) }

// Test checks whether a hash (already Keccak-256'd) might be present.
func (b BloomFilter) Test(hash Hash32) bool {
	return AreHashesInBloom([]Hash32{hash}, b)
}

// Or performs a bitwise OR of the receiver with other, storing into the
// receiver.
func (b *BloomFilter) Or(other BloomFilter) {
	for i := range b {
		b[i] |= other[i]
	}
}
