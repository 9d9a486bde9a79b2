package monitor

import (
	"errors"
	"math/big"
	"sort"

	"github.com/eth2030/eclipsemon/rlp"
	"github.com/eth2030/eclipsemon/types"
)

// ErrConfigFieldAbsent is raised by Validate when a required MonitorConfig
// field is its zero value.
var ErrConfigFieldAbsent = errors.New("monitor: config field absent")

// ErrDictFieldMissing is raised when decoding a serialized dictionary that
// is missing a required key.
var ErrDictFieldMissing = errors.New("monitor: serialized dictionary missing a required field")

// MonitorConfig is the embedder-supplied configuration. Every field is
// required; Validate fails if any is left at its zero value.
type MonitorConfig struct {
	SVN             uint32
	ChainName       string
	CheckpointSize  uint64
	MinDiffPercent  uint8
	MaxWaitTime     uint64
	SyncMaxWaitTime uint64
}

// Validate reports ErrConfigFieldAbsent if any required field is absent.
func (c *MonitorConfig) Validate() error {
	if c.SVN == 0 || c.ChainName == "" || c.CheckpointSize == 0 ||
		c.MinDiffPercent == 0 || c.MaxWaitTime == 0 || c.SyncMaxWaitTime == 0 {
		return ErrConfigFieldAbsent
	}
	return nil
}

// Encode serializes the config as a length-prefixed key/value dictionary,
// keys sorted for determinism.
func (c *MonitorConfig) Encode() ([]byte, error) {
	return encodeDict([]kvPair{
		{Key: "SVN", Val: minimalUint(uint64(c.SVN))},
		{Key: "chainName", Val: []byte(c.ChainName)},
		{Key: "checkpointSize", Val: minimalUint(c.CheckpointSize)},
		{Key: "minDiffPercent", Val: []byte{c.MinDiffPercent}},
		{Key: "maxWaitTime", Val: minimalUint(c.MaxWaitTime)},
		{Key: "syncMaxWaitTime", Val: minimalUint(c.SyncMaxWaitTime)},
	})
}

// DecodeMonitorConfig is the inverse of Encode.
func DecodeMonitorConfig(data []byte) (*MonitorConfig, error) {
	fields, err := decodeDict(data)
	if err != nil {
		return nil, err
	}
	var c MonitorConfig
	var ok bool
	var svn, checkpointSize uint64
	if svn, ok = fields.uint("SVN"); !ok {
		return nil, ErrDictFieldMissing
	}
	c.SVN = uint32(svn)
	if c.ChainName, ok = fields.str("chainName"); !ok {
		return nil, ErrDictFieldMissing
	}
	if checkpointSize, ok = fields.uint("checkpointSize"); !ok {
		return nil, ErrDictFieldMissing
	}
	c.CheckpointSize = checkpointSize
	b, ok := fields["minDiffPercent"]
	if !ok || len(b) != 1 {
		return nil, ErrDictFieldMissing
	}
	c.MinDiffPercent = b[0]
	if c.MaxWaitTime, ok = fields.uint("maxWaitTime"); !ok {
		return nil, ErrDictFieldMissing
	}
	if c.SyncMaxWaitTime, ok = fields.uint("syncMaxWaitTime"); !ok {
		return nil, ErrDictFieldMissing
	}
	return &c, nil
}

// MonitorSecState is the security-relevant state an external verifier can
// attest to.
type MonitorSecState struct {
	SVN            uint32
	GenesisHash    types.Hash32
	CheckpointIter uint64
	CheckpointHash types.Hash32
	CheckpointNum  uint64
}

// Encode serializes the state as a length-prefixed key/value dictionary.
// CheckpointNum is stored as the minimal big-endian bytes of the number
// (variable length), matching how the header's own number field is
// encoded, rather than as a fixed-width uint64.
func (s *MonitorSecState) Encode() ([]byte, error) {
	return encodeDict([]kvPair{
		{Key: "SVN", Val: minimalUint(uint64(s.SVN))},
		{Key: "genesisHash", Val: s.GenesisHash.Bytes()},
		{Key: "checkpointIter", Val: minimalUint(s.CheckpointIter)},
		{Key: "checkpointHash", Val: s.CheckpointHash.Bytes()},
		{Key: "checkpointNum", Val: minimalUint(s.CheckpointNum)},
	})
}

// DecodeMonitorSecState is the inverse of Encode.
func DecodeMonitorSecState(data []byte) (*MonitorSecState, error) {
	fields, err := decodeDict(data)
	if err != nil {
		return nil, err
	}
	var s MonitorSecState
	var ok bool
	var svn uint64
	if svn, ok = fields.uint("SVN"); !ok {
		return nil, ErrDictFieldMissing
	}
	s.SVN = uint32(svn)
	gh, ok := fields["genesisHash"]
	if !ok {
		return nil, ErrDictFieldMissing
	}
	s.GenesisHash = types.BytesToHash32(gh)
	if s.CheckpointIter, ok = fields.uint("checkpointIter"); !ok {
		return nil, ErrDictFieldMissing
	}
	ch, ok := fields["checkpointHash"]
	if !ok {
		return nil, ErrDictFieldMissing
	}
	s.CheckpointHash = types.BytesToHash32(ch)
	if s.CheckpointNum, ok = fields.uint("checkpointNum"); !ok {
		return nil, ErrDictFieldMissing
	}
	return &s, nil
}

// kvPair is one entry of the serialized dictionary.
type kvPair struct {
	Key string
	Val []byte
}

// dictFields is a decoded dictionary, indexed by key.
type dictFields map[string][]byte

func (f dictFields) uint(key string) (uint64, bool) {
	b, ok := f[key]
	if !ok {
		return 0, false
	}
	return new(big.Int).SetBytes(b).Uint64(), true
}

func (f dictFields) str(key string) (string, bool) {
	b, ok := f[key]
	if !ok {
		return "", false
	}
	return string(b), true
}

// encodeDict sorts pairs by key and RLP-encodes them as a list of
// [key, value] tuples -- the "advanced-RLP categorical encoding."
func encodeDict(pairs []kvPair) ([]byte, error) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return rlp.EncodeToBytes(pairs)
}

// decodeDict is the inverse of encodeDict.
func decodeDict(data []byte) (dictFields, error) {
	var pairs []kvPair
	if err := rlp.DecodeBytes(data, &pairs); err != nil {
		return nil, err
	}
	fields := make(dictFields, len(pairs))
	for _, p := range pairs {
		fields[p.Key] = p.Val
	}
	return fields, nil
}

// minimalUint returns u as big-endian bytes with no leading zero byte (the
// empty slice for zero).
func minimalUint(u uint64) []byte {
	return new(big.Int).SetUint64(u).Bytes()
}
