// Package checkpoint implements the rolling checkpoint window: the
// bootstrap-phase header accumulator and the runtime window that slides
// forward as the fork tree confirms new anchors.
package checkpoint

import (
	"errors"
	"sort"

	"github.com/eth2030/eclipsemon/forktree"
	"github.com/eth2030/eclipsemon/syncproto"
	"github.com/eth2030/eclipsemon/types"
)

// ErrPhaseMisuse is raised for a call that violates the bootstrap/runtime
// phase contract: AddHeader after bootstrap has ended, AddNode before it
// has, or EndBootstrapPhase with an empty currWindow or non-empty
// candidate.
var ErrPhaseMisuse = errors.New("checkpoint: phase misuse")

// ErrNilNode is raised by AddNode for a nil fork-tree node.
var ErrNilNode = errors.New("checkpoint: node must not be nil")

// OnComplete is invoked after a checkpoint roll. By the time it runs,
// checkpointIter, checkpointHash and checkpointNum already reflect the new
// window, and CurrWindow returns it.
type OnComplete func(cm *CheckpointMgr)

// CheckpointMgr holds two ordered windows of owned HeaderMgrs: currWindow
// (the last completed window) and candidate (the window being built),
// plus lastNode, the most recently accepted fork-tree node. lastIsCandidate
// tells whether lastNode is a genuine pending candidate not yet folded
// into candidate (true), or the anchor handed over by EndBootstrapPhase /
// just installed by a roll, whose header is exposed through CurrWindow
// directly rather than counted again (false). Without that distinction
// the header that ends Bootstrap-I would be folded into both the window
// it already completed and the one after it.
type CheckpointMgr struct {
	checkpointSize int
	onComplete     OnComplete

	currWindow []*types.HeaderMgr
	candidate  []*types.HeaderMgr

	lastNode        *forktree.HeaderNode
	lastIsCandidate bool
	bootstrapped    bool

	checkpointIter uint64
	checkpointHash types.Hash32
	checkpointNum  uint64
}

// NewCheckpointMgr creates an empty manager for the given window size.
// onComplete may be nil.
func NewCheckpointMgr(checkpointSize int, onComplete OnComplete) *CheckpointMgr {
	return &CheckpointMgr{checkpointSize: checkpointSize, onComplete: onComplete}
}

// CheckpointSize returns the configured window size.
func (t *CheckpointMgr) CheckpointSize() int { return t.checkpointSize }

// CurrWindow returns the last completed window, in insertion order. Once
// bootstrap has ended, the window's freshest header may live in lastNode
// rather than in the currWindow slice -- CurrWindow folds it back in
// whenever lastNode is not itself a pending candidate, so callers never
// see a window missing its own tail.
func (t *CheckpointMgr) CurrWindow() []*types.HeaderMgr {
	if t.lastNode != nil && !t.lastIsCandidate {
		window := make([]*types.HeaderMgr, len(t.currWindow)+1)
		copy(window, t.currWindow)
		window[len(t.currWindow)] = t.lastNode.Header()
		return window
	}
	return t.currWindow
}

// LastNode returns the fork-tree node most recently accepted into the
// manager -- the checkpoint anchor, once bootstrap has ended.
func (t *CheckpointMgr) LastNode() *forktree.HeaderNode { return t.lastNode }

// CheckpointIter, CheckpointHash and CheckpointNum report the identity of
// the most recently completed window.
func (t *CheckpointMgr) CheckpointIter() uint64       { return t.checkpointIter }
func (t *CheckpointMgr) CheckpointHash() types.Hash32 { return t.checkpointHash }
func (t *CheckpointMgr) CheckpointNum() uint64        { return t.checkpointNum }

// numOfCandidates counts headers already queued toward the next roll:
// candidate's own length, plus one more if lastNode is itself a pending
// candidate not yet folded in.
func (t *CheckpointMgr) numOfCandidates() int {
	n := len(t.candidate)
	if t.lastNode != nil && t.lastIsCandidate {
		n++
	}
	return n
}

// AddHeader appends h to candidate during Bootstrap-I. When candidate
// reaches checkpointSize, it is promoted to currWindow and on-complete
// fires.
func (t *CheckpointMgr) AddHeader(h *types.HeaderMgr) error {
	if t.bootstrapped {
		return ErrPhaseMisuse
	}
	t.candidate = append(t.candidate, h)
	if t.numOfCandidates() >= t.checkpointSize {
		t.currWindow = t.candidate
		t.candidate = nil
		t.completeRoll()
	}
	return nil
}

// EndBootstrapPhase promotes the tail of currWindow into the root
// HeaderNode under the given sync state, and installs it as lastNode:
// from here on AddNode drives the window forward. The tail is popped out
// of currWindow as it goes; CurrWindow folds it straight back in via
// lastNode until a real successor arrives. currWindow must be non-empty
// and candidate must be empty.
func (t *CheckpointMgr) EndBootstrapPhase(syncState *syncproto.SyncState) (*forktree.HeaderNode, error) {
	if t.bootstrapped {
		return nil, ErrPhaseMisuse
	}
	if len(t.currWindow) == 0 || len(t.candidate) != 0 {
		return nil, ErrPhaseMisuse
	}
	tail := t.currWindow[len(t.currWindow)-1]
	t.currWindow = t.currWindow[:len(t.currWindow)-1]
	root := forktree.NewRoot(tail, syncState)
	t.lastNode = root
	t.lastIsCandidate = false
	t.bootstrapped = true
	return root, nil
}

// AddNode accepts a confirmed fork-tree node during Runtime. Whether this
// call completes the window is decided before n is ever touched: if the
// headers already queued (candidate, plus lastNode when it is a pending
// candidate) together with n reach checkpointSize, the roll happens now --
// the outgoing lastNode joins candidate, candidate becomes the new
// currWindow, and n itself becomes the new anchor (lastIsCandidate false,
// so n's own header is exposed through CurrWindow, not folded into
// candidate). Otherwise the outgoing lastNode is filed into whichever
// window it actually belongs to -- candidate if it was a pending
// candidate, or back into currWindow if it was itself an anchor not yet
// replaced -- and n becomes the new pending candidate.
func (t *CheckpointMgr) AddNode(n *forktree.HeaderNode) error {
	if !t.bootstrapped {
		return ErrPhaseMisuse
	}
	if n == nil {
		return ErrNilNode
	}

	if t.numOfCandidates()+1 >= t.checkpointSize {
		if t.lastNode != nil {
			t.candidate = append(t.candidate, t.lastNode.Header())
		}
		t.currWindow = t.candidate
		t.candidate = nil
		t.lastNode = n
		t.lastIsCandidate = false
		t.completeRoll()
	} else {
		if t.lastNode != nil {
			if t.lastIsCandidate {
				t.candidate = append(t.candidate, t.lastNode.Header())
			} else {
				t.currWindow = append(t.currWindow, t.lastNode.Header())
			}
		}
		t.lastNode = n
		t.lastIsCandidate = true
	}
	return nil
}

// completeRoll stamps the checkpoint identity from the now-current
// window's tail and fires on-complete.
func (t *CheckpointMgr) completeRoll() {
	window := t.CurrWindow()
	last := window[len(window)-1]
	t.checkpointHash = last.Hash()
	t.checkpointNum = last.Number()
	t.checkpointIter++
	if t.onComplete != nil {
		t.onComplete(t)
	}
}

// GetDiffMedian returns the nth_element-style median of CurrWindow's
// difficulties: the value at sorted position floor(|W|/2). This is
// intentionally not the statistical median for even-sized windows.
func (t *CheckpointMgr) GetDiffMedian() uint64 {
	window := t.CurrWindow()
	n := len(window)
	if n == 0 {
		return 0
	}
	diffs := make([]uint64, n)
	for i, h := range window {
		diffs[i] = h.Difficulty()
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i] < diffs[j] })
	return diffs[n/2]
}
