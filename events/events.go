// Package events implements contract-log event registration and delivery:
// a bloom pre-filter followed by receipts-root reconstruction against the
// Patricia-Merkle trie, matching the monitor's tamper-detection contract.
package events

import (
	"fmt"
	"sync"

	"github.com/eth2030/eclipsemon/crypto"
	"github.com/eth2030/eclipsemon/rlp"
	"github.com/eth2030/eclipsemon/trie"
	"github.com/eth2030/eclipsemon/types"
)

// CallbackId identifies one registered listener.
type CallbackId uint64

// Callback is invoked once per matching log entry.
type Callback func(header *types.HeaderMgr, log *types.Log, id CallbackId)

// ReceiptsGetter materializes the full receipts list for a block. Called at
// most once per header, only once the bloom pre-filter has passed.
type ReceiptsGetter func(blockNumber uint64) ([]*types.Receipt, error)

// ErrReceiptsRootMismatch is raised when a header's bloom claims a match
// but the reconstructed receipts-root trie disagrees with the header's
// receiptsRoot field -- treated as evidence of tampering, not a bug to
// retry past.
type ErrReceiptsRootMismatch struct {
	BlockNumber uint64
	Want        types.Hash32
	Got         types.Hash32
}

func (e *ErrReceiptsRootMismatch) Error() string {
	return fmt.Sprintf("events: receipts-root mismatch at block %d: header says %s, reconstructed %s",
		e.BlockNumber, e.Want.Hex(), e.Got.Hex())
}

// EventDescription is one registered listener: a contract address plus a
// topic prefix, and the Keccak digests the bloom pre-filter probes for.
type EventDescription struct {
	Addr     types.ContractAddr
	Topics   []types.Hash32
	callback Callback

	derivedHashes []types.Hash32
}

// NewEventDescription builds a listener for logs emitted by addr whose
// topic list has topics as a prefix. derivedHashes is precomputed once
// here (Keccak of the address, then of each topic) so CheckEvents never
// re-hashes on the hot path.
func NewEventDescription(addr types.ContractAddr, topics []types.Hash32, cb Callback) *EventDescription {
	hashes := make([]types.Hash32, 0, 1+len(topics))
	hashes = append(hashes, crypto.Keccak256Hash(addr.Bytes()))
	for _, t := range topics {
		hashes = append(hashes, crypto.Keccak256Hash(t.Bytes()))
	}
	return &EventDescription{Addr: addr, Topics: topics, callback: cb, derivedHashes: hashes}
}

// matches reports whether log was emitted by this description's address
// and carries this description's topics as a prefix of its own.
func (d *EventDescription) matches(lg *types.Log) bool {
	if lg.Address != d.Addr {
		return false
	}
	if len(d.Topics) > len(lg.Topics) {
		return false
	}
	for i, t := range d.Topics {
		if lg.Topics[i] != t {
			return false
		}
	}
	return true
}

// EventManager holds the set of registered listeners and runs the
// bloom-filter-then-trie-reconstruction check on every header.
type EventManager struct {
	mu        sync.Mutex
	nextID    CallbackId
	listeners map[CallbackId]*EventDescription
}

// NewEventManager creates an empty EventManager.
func NewEventManager() *EventManager {
	return &EventManager{listeners: make(map[CallbackId]*EventDescription)}
}

// Listen registers desc and returns its id.
func (m *EventManager) Listen(desc *EventDescription) CallbackId {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = desc
	return id
}

// Cancel removes a listener. Safe to call from within a callback.
func (m *EventManager) Cancel(id CallbackId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, id)
}

// GetNumOfListeners returns the number of currently-registered listeners.
func (m *EventManager) GetNumOfListeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// matchedListener pairs a description with the id it was registered under,
// captured while the registration lock is held.
type matchedListener struct {
	id   CallbackId
	desc *EventDescription
}

// CheckEvents runs the bloom pre-filter, and -- only if at least one
// listener's derived hashes are all present in header's logs-bloom --
// materializes the block's receipts via receiptsGetter, reconstructs the
// receipts-root trie, and compares it against the header's claimed root.
// A mismatch is returned as *ErrReceiptsRootMismatch and no callback
// fires. On a match, every log touched by a matched listener invokes that
// listener's callback, after the registration lock has been released.
func (m *EventManager) CheckEvents(header *types.HeaderMgr, receiptsGetter ReceiptsGetter) error {
	m.mu.Lock()

	var matched []matchedListener
	bloom := header.LogsBloom()
	for id, desc := range m.listeners {
		if types.AreHashesInBloom(desc.derivedHashes, bloom) {
			matched = append(matched, matchedListener{id: id, desc: desc})
		}
	}
	if len(matched) == 0 {
		m.mu.Unlock()
		return nil
	}

	receipts, err := receiptsGetter(header.Number())
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("events: receipts getter: %w", err)
	}

	root, err := receiptsRoot(receipts)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("events: reconstruct receipts root: %w", err)
	}
	if root != header.ReceiptsRoot() {
		m.mu.Unlock()
		return &ErrReceiptsRootMismatch{BlockNumber: header.Number(), Want: header.ReceiptsRoot(), Got: root}
	}

	type delivery struct {
		id  CallbackId
		cb  Callback
		log *types.Log
	}
	var plan []delivery
	for _, r := range receipts {
		for _, lg := range r.Logs {
			for _, ml := range matched {
				if ml.desc.matches(lg) {
					plan = append(plan, delivery{id: ml.id, cb: ml.desc.callback, log: lg})
				}
			}
		}
	}

	m.mu.Unlock()

	for _, d := range plan {
		d.cb(header, d.log, d.id)
	}
	return nil
}

// receiptsRoot rebuilds the Ethereum receipts-trie root from an ordered
// receipt list: key is the RLP encoding of the receipt's index, value is
// the receipt's raw wire encoding.
func receiptsRoot(receipts []*types.Receipt) (types.Hash32, error) {
	t := trie.New()
	for i, r := range receipts {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return types.Hash32{}, err
		}
		val, err := r.EncodeRLP()
		if err != nil {
			return types.Hash32{}, err
		}
		if err := t.Put(key, val); err != nil {
			return types.Hash32{}, err
		}
	}
	return t.Hash(), nil
}
