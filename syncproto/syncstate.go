// Package syncproto implements the sync-nonce liveness protocol: a single
// shared SyncState per sync epoch, and the manager that rotates it and
// rebinds the contract-log listener that detects re-synchronization.
package syncproto

import (
	"sync/atomic"

	"github.com/eth2030/eclipsemon/types"
)

// SyncState is an immutable-after-init record shared between the sync
// manager and every fork-tree node inserted under this epoch; its only
// mutable field is the atomic isSynced flag.
type SyncState struct {
	genTime uint64
	nonce   types.SyncNonce
	maxWait uint64

	synced atomic.Bool
}

func newSyncState(genTime uint64, nonce types.SyncNonce, maxWait uint64) *SyncState {
	return &SyncState{genTime: genTime, nonce: nonce, maxWait: maxWait}
}

// GenTime returns the time this sync epoch began.
func (s *SyncState) GenTime() uint64 { return s.genTime }

// Nonce returns this epoch's random sync nonce.
func (s *SyncState) Nonce() types.SyncNonce { return s.nonce }

// IsSynced reports whether this epoch has observed a matching sync event.
func (s *SyncState) IsSynced() bool { return s.synced.Load() }

// SetSynced flips isSynced to true iff headerTrustedTime is within maxWait
// seconds of genTime (and not before it); returns whether it flipped. Once
// set, isSynced never reverts.
func (s *SyncState) SetSynced(headerTrustedTime uint64) bool {
	if headerTrustedTime < s.genTime {
		return false
	}
	if headerTrustedTime-s.genTime > s.maxWait {
		return false
	}
	s.synced.Store(true)
	return true
}
