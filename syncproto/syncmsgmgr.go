package syncproto

import (
	"sync/atomic"

	"github.com/eth2030/eclipsemon/events"
	"github.com/eth2030/eclipsemon/types"
)

// SyncMsgMgr owns the current sync epoch and the contract-log listener
// bound to it. Rotating to a new epoch cancels the previous listener,
// publishes a new SyncState, and registers a listener for the new epoch's
// nonce; the registered callback fires at most once per epoch.
type SyncMsgMgr struct {
	events           *events.EventManager
	syncContractAddr types.ContractAddr
	eventSign        types.Hash32
	sessionID        types.SessionID
	syncMaxWaitTime  uint64

	current    atomic.Pointer[SyncState]
	listenerID atomic.Uint64 // 0 means "no listener registered"
}

// NewSyncMsgMgr constructs the manager and, per the construction contract,
// immediately registers a listener for (syncContractAddr, [eventSign,
// sessionID-as-topic, nonce-as-topic]) bound to the initial epoch.
func NewSyncMsgMgr(em *events.EventManager, syncContractAddr types.ContractAddr, eventSign types.Hash32, sessionID types.SessionID, syncMaxWaitTime, genTime uint64, nonce types.SyncNonce) *SyncMsgMgr {
	m := &SyncMsgMgr{
		events:           em,
		syncContractAddr: syncContractAddr,
		eventSign:        eventSign,
		sessionID:        sessionID,
		syncMaxWaitTime:  syncMaxWaitTime,
	}
	m.NewSyncState(genTime, nonce)
	return m
}

// Current returns the current sync epoch.
func (m *SyncMsgMgr) Current() *SyncState {
	return m.current.Load()
}

// NewSyncState cancels the previous listener, builds and atomically
// publishes a fresh SyncState{genTime, nonce}, and registers a listener
// bound to the new nonce. The listener fires once: on its first matching
// log it calls SetSynced(header.trustedTime), then cancels itself.
func (m *SyncMsgMgr) NewSyncState(genTime uint64, nonce types.SyncNonce) *SyncState {
	if id := events.CallbackId(m.listenerID.Load()); id != 0 {
		m.events.Cancel(id)
	}

	st := newSyncState(genTime, nonce, m.syncMaxWaitTime)
	m.current.Store(st)

	topics := []types.Hash32{m.eventSign, sessionIDTopic(m.sessionID), types.Hash32(nonce)}
	desc := events.NewEventDescription(m.syncContractAddr, topics, m.onSyncLog(st))
	id := m.events.Listen(desc)
	m.listenerID.Store(uint64(id))
	return st
}

// onSyncLog returns the one-shot callback bound to sync epoch st.
func (m *SyncMsgMgr) onSyncLog(st *SyncState) events.Callback {
	var fired atomic.Bool
	return func(header *types.HeaderMgr, log *types.Log, id events.CallbackId) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		st.SetSynced(header.TrustedTime())
		m.events.Cancel(id)
	}
}

// sessionIDTopic left-pads a 16-byte session id into a 32-byte log topic.
func sessionIDTopic(id types.SessionID) types.Hash32 {
	return types.BytesToHash32(id[:])
}
