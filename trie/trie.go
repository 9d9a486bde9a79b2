// Package trie implements a Merkle Patricia Trie as defined in the
// Ethereum Yellow Paper, restricted to the operations the receipts-root
// check needs: Put and Hash.
package trie

import (
	"errors"

	"github.com/eth2030/eclipsemon/crypto"
	"github.com/eth2030/eclipsemon/types"
)

// Trie is a Merkle Patricia Trie supporting insertion and root hashing.
// There is no backing store: every node lives in memory for the lifetime
// of one receipts-root computation.
type Trie struct {
	root node
}

// New creates a new, empty trie.
func New() *Trie {
	return &Trie{}
}

// Put inserts or overwrites the value at key.
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return errors.New("trie: empty value")
	}
	k := keybytesToHex(key)
	n, err := t.insert(t.root, nil, k, valueNode(value))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) insert(n node, prefix, key []byte, value node) (node, error) {
	if len(key) == 0 {
		if v, ok := n.(valueNode); ok && keysEqual(v, value.(valueNode)) {
			return v, nil
		}
		return value, nil
	}

	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, flags: nodeFlag{dirty: true}}, nil

	case *shortNode:
		matchLen := prefixLen(key, n.Key)
		if matchLen == len(n.Key) {
			nn, err := t.insert(n.Val, append(prefix, key[:matchLen]...), key[matchLen:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: nn, flags: nodeFlag{dirty: true}}, nil
		}
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		existingChild, err := t.insert(nil, append(prefix, n.Key[:matchLen+1]...), n.Key[matchLen+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[n.Key[matchLen]] = existingChild
		newChild, err := t.insert(nil, append(prefix, key[:matchLen+1]...), key[matchLen+1:], value)
		if err != nil {
			return nil, err
		}
		branch.Children[key[matchLen]] = newChild
		if matchLen > 0 {
			return &shortNode{Key: key[:matchLen], Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		return branch, nil

	case *fullNode:
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		child, err := t.insert(n.Children[key[0]], append(prefix, key[0]), key[1:], value)
		if err != nil {
			return nil, err
		}
		nn.Children[key[0]] = child
		return nn, nil

	default:
		return nil, errors.New("trie: unknown node type")
	}
}

// Hash computes the Keccak-256 root hash of the trie: the canonical empty
// root if no key has been inserted, otherwise the Keccak-256 of the
// RLP-encoded root node (or the raw RLP itself, if the root's encoding
// happens to be under 32 bytes -- Hash forces a real hash regardless, per
// the root-node hashing rule).
func (t *Trie) Hash() types.Hash32 {
	if t.root == nil {
		return types.EmptyRootHash
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached
	switch n := hashed.(type) {
	case hashNode:
		return types.BytesToHash32(n)
	default:
		enc, _ := encodeNode(hashed)
		return crypto.Keccak256Hash(enc)
	}
}

// Empty reports whether the trie has no entries.
func (t *Trie) Empty() bool { return t.root == nil }

func keysEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
