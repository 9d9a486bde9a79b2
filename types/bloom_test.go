package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBloomNoFalseNegatives(t *testing.T) {
	var bloom BloomFilter
	data := [][]byte{
		[]byte("contract-address-1"),
		[]byte("topic-a"),
		[]byte("topic-b"),
	}
	for _, d := range data {
		BloomAdd(&bloom, d)
	}
	for _, d := range data {
		h := keccak256(d)
		require.True(t, bloom.Test(h), "added value must always test present")
	}
}

func TestAreHashesInBloomRequiresAll(t *testing.T) {
	var bloom BloomFilter
	BloomAdd(&bloom, []byte("present"))

	present := keccak256([]byte("present"))
	absent := keccak256([]byte("definitely-not-added"))

	require.True(t, AreHashesInBloom([]Hash32{present}, bloom))
	require.False(t, AreHashesInBloom([]Hash32{present, absent}, bloom))
}

func TestLogsBloomAndCreateBloomAgree(t *testing.T) {
	logs := []*Log{
		{Address: BytesToContractAddr([]byte("addr-1")), Topics: []Hash32{keccak256([]byte("topic-1"))}},
		{Address: BytesToContractAddr([]byte("addr-2")), Topics: []Hash32{keccak256([]byte("topic-2"))}},
	}
	want := LogsBloom(logs)

	r1 := &Receipt{Bloom: LogsBloom(logs[:1])}
	r2 := &Receipt{Bloom: LogsBloom(logs[1:])}
	got := CreateBloom([]*Receipt{r1, r2})

	require.Equal(t, want, got)
}

func TestBloomBytesRoundTrip(t *testing.T) {
	var bloom BloomFilter
	BloomAdd(&bloom, []byte("round-trip"))

	raw := bloom.Bytes()
	var back BloomFilter
	back.SetBytes(raw)
	require.Equal(t, bloom, back)
}
