// Package monitor implements the eclipse-attack monitor's phase state
// machine: Bootstrap-I builds the genesis checkpoint window directly;
// Bootstrap-II issues the sync request; Sync and Runtime attach headers to
// the fork tree, roll checkpoints, scan for events, and expire stalled
// tips.
package monitor

import (
	"errors"

	"github.com/eth2030/eclipsemon/checkpoint"
	"github.com/eth2030/eclipsemon/consensus"
	"github.com/eth2030/eclipsemon/events"
	"github.com/eth2030/eclipsemon/forktree"
	"github.com/eth2030/eclipsemon/syncproto"
	"github.com/eth2030/eclipsemon/types"
)

// Phase is one state of the monitor's phase state machine.
type Phase int

const (
	PhaseBootstrapI Phase = iota
	PhaseBootstrapII
	PhaseSync
	PhaseRuntime
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrapI:
		return "BootstrapI"
	case PhaseBootstrapII:
		return "BootstrapII"
	case PhaseSync:
		return "Sync"
	case PhaseRuntime:
		return "Runtime"
	default:
		return "unknown"
	}
}

// ErrPhaseMisuse is raised for an operation invalid in the monitor's
// current phase (e.g. EndSync outside the Sync phase).
var ErrPhaseMisuse = errors.New("monitor: phase misuse")

// Monitor is the eclipse-attack monitor core. Update, EndBootstrapI,
// RefreshSyncMsg, RefreshBootstrapPlan and EndSync form one logical task
// and must be called from a single logical thread of control; only the
// EventManager registration map and SyncState.isSynced tolerate
// concurrent access from elsewhere.
type Monitor struct {
	config MonitorConfig

	clock          Clock
	rng            Rng
	logger         Logger
	receiptsGetter ReceiptsGetter

	onHeaderValidated HeaderCallback
	onHeaderConfirmed HeaderCallback

	validator     *consensus.Validator
	diffChecker   *consensus.DiffChecker
	checkpointMgr *checkpoint.CheckpointMgr
	eventMgr      *events.EventManager
	syncMsgMgr    *syncproto.SyncMsgMgr

	phase Phase

	genesisHash types.Hash32
	lastKnown   *types.HeaderMgr // tip of Bootstrap-I's validated chain

	plannedBootstrapIEndNum *uint64
	plannedSyncBlockNum     *uint64

	sessionID types.SessionID

	offline map[types.Hash32]*forktree.HeaderNode
	active  map[types.Hash32]*forktree.HeaderNode

	secState MonitorSecState
}

// NewMonitor constructs a Monitor in phase BootstrapI. Any of clock, rng,
// logger may be nil to take the package defaults (SystemClock,
// CryptoRandRNG, NewDefaultLogger). syncContractAddr and eventSign
// identify the on-chain sync event SyncMsgMgr listens for.
func NewMonitor(cfg MonitorConfig, syncContractAddr types.ContractAddr, eventSign types.Hash32, clock Clock, rng Rng, logger Logger, receiptsGetter ReceiptsGetter, onHeaderValidated, onHeaderConfirmed HeaderCallback) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if rng == nil {
		rng = CryptoRandRNG{}
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	m := &Monitor{
		config:            cfg,
		clock:             clock,
		rng:               rng,
		logger:            logger,
		receiptsGetter:    receiptsGetter,
		onHeaderValidated: onHeaderValidated,
		onHeaderConfirmed: onHeaderConfirmed,
		validator:         consensus.NewValidator(),
		diffChecker:       consensus.NewDiffChecker(cfg.MinDiffPercent, cfg.MaxWaitTime),
		eventMgr:          events.NewEventManager(),
		phase:             PhaseBootstrapI,
		sessionID:         newSessionID(),
		offline:           make(map[types.Hash32]*forktree.HeaderNode),
		active:            make(map[types.Hash32]*forktree.HeaderNode),
	}
	m.checkpointMgr = checkpoint.NewCheckpointMgr(int(cfg.CheckpointSize), m.onCheckpointComplete)
	m.syncMsgMgr = syncproto.NewSyncMsgMgr(m.eventMgr, syncContractAddr, eventSign, m.sessionID, cfg.SyncMaxWaitTime, 0, types.SyncNonce{})
	return m, nil
}

// Phase returns the monitor's current phase.
func (m *Monitor) Phase() Phase { return m.phase }

// SessionID returns this monitor instance's session id.
func (m *Monitor) SessionID() types.SessionID { return m.sessionID }

// GenesisHash returns the genesis header's hash, recorded at the first
// Bootstrap-I header.
func (m *Monitor) GenesisHash() types.Hash32 { return m.genesisHash }

// SecState returns the security-relevant state last updated by a
// checkpoint roll.
func (m *Monitor) SecState() MonitorSecState { return m.secState }

// Anchor returns the checkpoint manager's current anchor node, nil before
// Bootstrap-I has ended.
func (m *Monitor) Anchor() *forktree.HeaderNode { return m.checkpointMgr.LastNode() }

// EventManager exposes the event registration surface (Listen/Cancel) to
// embedders.
func (m *Monitor) EventManager() *events.EventManager { return m.eventMgr }

// Update feeds one raw header byte sequence through the phase state
// machine.
func (m *Monitor) Update(headerBytes []byte) error {
	if m.phase == PhaseBootstrapI {
		return m.updateBootstrapI(headerBytes)
	}
	return m.updateNotBootstrapI(headerBytes)
}

func (m *Monitor) updateBootstrapI(headerBytes []byte) error {
	h, err := types.NewHeaderMgr(headerBytes, 0)
	if err != nil {
		m.logger.Error("bootstrap-I parse error", "err", err)
		return err
	}

	if m.lastKnown == nil {
		m.genesisHash = h.Hash()
	} else if err := m.validator.CommonValidate(m.lastKnown, h); err != nil {
		m.logger.Error("bootstrap-I validation failed", "err", err, "number", h.Number())
		return err
	}

	if m.onHeaderValidated != nil {
		m.onHeaderValidated(h)
	}
	if err := m.checkpointMgr.AddHeader(h); err != nil {
		return err
	}
	m.lastKnown = h

	if m.plannedBootstrapIEndNum != nil && h.Number() == *m.plannedBootstrapIEndNum {
		return m.EndBootstrapI()
	}
	return nil
}

func (m *Monitor) updateNotBootstrapI(headerBytes []byte) error {
	now := m.clock.NowInSec()
	h, err := types.NewHeaderMgr(headerBytes, now)
	if err != nil {
		m.logger.Error("parse error", "err", err)
		return err
	}

	parentHash := h.ParentHash()
	parentNode, ok := m.offline[parentHash]
	if !ok {
		parentNode, ok = m.active[parentHash]
	}
	if !ok {
		m.logger.Warn("orphan header", "hash", h.Hash().Hex(), "parentHash", parentHash.Hex())
		return nil
	}

	if err := m.validator.CommonValidate(parentNode.Header(), h); err != nil {
		m.logger.Error("validation failed", "err", err, "number", h.Number())
		return nil
	}
	if !m.diffChecker.CheckDifficulty(parentNode.Header(), h) {
		m.logger.Error("difficulty-policy failure", "number", h.Number())
		return nil
	}

	if m.onHeaderValidated != nil {
		m.onHeaderValidated(h)
	}

	syncState := m.syncMsgMgr.Current()
	child := parentNode.AddChild(h, syncState)
	if syncState.IsSynced() {
		m.active[h.Hash()] = child
	} else {
		m.offline[h.Hash()] = child
	}

	if err := m.eventMgr.CheckEvents(h, m.receiptsGetter); err != nil {
		m.logger.Error("receipts-root mismatch", "err", err, "number", h.Number())
		return err
	}

	m.runtimeMaintenance(now)

	if m.phase == PhaseBootstrapII && m.plannedSyncBlockNum != nil && h.Number() == *m.plannedSyncBlockNum {
		m.RefreshSyncMsg()
		m.phase = PhaseSync
	}
	return nil
}

// runtimeMaintenance asks the checkpoint anchor for a confirmed child and,
// if found, rolls the checkpoint; then expires any active tip whose
// estimated difficulty has fallen below the floor. The expiry sweep is a
// two-pass collect-then-delete over the active map, since deleting from a
// map while ranging it is unsafe to rely on.
func (m *Monitor) runtimeMaintenance(now uint64) {
	if anchor := m.checkpointMgr.LastNode(); anchor != nil {
		if confirmed := anchor.ReleaseChildHasNDesc(uint64(m.checkpointMgr.CheckpointSize())); confirmed != nil {
			anchorHash := anchor.Header().Hash()
			confirmedHash := confirmed.Header().Hash()
			delete(m.offline, anchorHash)
			delete(m.active, anchorHash)
			delete(m.offline, confirmedHash)
			delete(m.active, confirmedHash)
			_ = m.checkpointMgr.AddNode(confirmed)
		}
	}

	var expired []types.Hash32
	for hash, node := range m.active {
		if !m.diffChecker.CheckEstDifficulty(node.Header(), now) {
			expired = append(expired, hash)
		}
	}
	for _, hash := range expired {
		delete(m.active, hash)
	}
}

// EndBootstrapI promotes the tail of the checkpoint window's currWindow
// into the root fork-tree node, seeds the offline map with it, plans the
// sync block number one checkpoint window past the bootstrap boundary,
// and transitions to BootstrapII.
func (m *Monitor) EndBootstrapI() error {
	root, err := m.checkpointMgr.EndBootstrapPhase(m.syncMsgMgr.Current())
	if err != nil {
		return err
	}
	m.offline[root.Header().Hash()] = root

	syncBlock := *m.plannedBootstrapIEndNum + m.config.CheckpointSize
	m.plannedSyncBlockNum = &syncBlock
	m.phase = PhaseBootstrapII
	return nil
}

// RefreshSyncMsg draws a new sync state (a fresh random nonce and the
// current trusted time) and rebinds the sync event listener to it. A
// no-op when built with the devoverrides build tag's disable-sync-refresh
// flag set.
func (m *Monitor) RefreshSyncMsg() {
	if devDisableSyncRefresh {
		return
	}
	nonce := newSyncNonce(m.rng)
	m.syncMsgMgr.NewSyncState(m.clock.NowInSec(), nonce)
}

// EndSync transitions Sync to Runtime. Nothing on the Update path differs
// between the two; the distinction is purely for the embedder's own
// bookkeeping.
func (m *Monitor) EndSync() error {
	if m.phase != PhaseSync {
		return ErrPhaseMisuse
	}
	m.phase = PhaseRuntime
	return nil
}

// RefreshBootstrapPlan recomputes the planned Bootstrap-I end block from
// the latest known chain tip and an optional start block (genesis, 0, if
// nil): numBlocks = latest - start + 1; numIntervals = max(0,
// numBlocks/checkpointSize - 2); end = start + numIntervals*checkpointSize
// - 1. The two-window margin keeps the monitor from going live right at
// the edge of the known chain. If the computed end would be before start
// (insufficient depth yet), no plan is set and Bootstrap-I will not
// auto-end until a later call supplies enough depth.
func (m *Monitor) RefreshBootstrapPlan(latest uint64, start *uint64) {
	s := int64(0)
	if start != nil {
		s = int64(*start)
	}
	size := int64(m.config.CheckpointSize)
	numBlocks := int64(latest) - s + 1
	numIntervals := numBlocks/size - 2
	if numIntervals < 0 {
		numIntervals = 0
	}
	end := s + numIntervals*size - 1
	if end < s {
		m.plannedBootstrapIEndNum = nil
		return
	}
	v := uint64(end)
	m.plannedBootstrapIEndNum = &v
}

func (m *Monitor) onCheckpointComplete(cp *checkpoint.CheckpointMgr) {
	m.diffChecker.OnChkptUpd(cp.GetDiffMedian())

	m.secState.SVN = m.config.SVN
	m.secState.GenesisHash = m.genesisHash
	m.secState.CheckpointIter = cp.CheckpointIter()
	m.secState.CheckpointHash = cp.CheckpointHash()
	m.secState.CheckpointNum = cp.CheckpointNum()

	if m.onHeaderConfirmed != nil {
		for _, h := range cp.CurrWindow() {
			m.onHeaderConfirmed(h)
		}
	}
}
