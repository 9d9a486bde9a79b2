// Package forktree implements the fork-tree of HeaderNodes rooted at the
// checkpoint manager's anchor: descendant-count bookkeeping and the
// confirmation-release operation that drives checkpoint rolls.
package forktree

import (
	"github.com/eth2030/eclipsemon/syncproto"
	"github.com/eth2030/eclipsemon/types"
)

// ChildInfo pairs a child node with the number of transitive descendants
// of that child, not counting the child itself.
type ChildInfo struct {
	DescCount uint64
	Child     *HeaderNode
}

// HeaderNode is one node of the fork tree. The parent link is a
// non-owning back-pointer (the child is owned by the parent's child
// list); every child's parent pointer is valid for the lifetime of that
// child. SyncState is the sync epoch in effect when this node was
// inserted, shared with every other node inserted under the same epoch.
type HeaderNode struct {
	header    *types.HeaderMgr
	parent    *HeaderNode
	children  []*ChildInfo
	syncState *syncproto.SyncState
}

// NewRoot creates a root node with no parent, for installing the
// checkpoint anchor.
func NewRoot(header *types.HeaderMgr, syncState *syncproto.SyncState) *HeaderNode {
	return &HeaderNode{header: header, syncState: syncState}
}

// Header returns the node's owned HeaderMgr.
func (n *HeaderNode) Header() *types.HeaderMgr { return n.header }

// SyncState returns the sync epoch captured when this node was inserted.
func (n *HeaderNode) SyncState() *syncproto.SyncState { return n.syncState }

// Parent returns the non-owning back-pointer, nil at the root.
func (n *HeaderNode) Parent() *HeaderNode { return n.parent }

// Children returns the node's child list. The returned slice must not be
// mutated by the caller.
func (n *HeaderNode) Children() []*ChildInfo { return n.children }

// DescCount returns the descendant count recorded for n in its parent's
// child list; 0 for the root, which has no such entry.
func (n *HeaderNode) DescCount() uint64 {
	if n.parent == nil {
		return 0
	}
	for _, ci := range n.parent.children {
		if ci.Child == n {
			return ci.DescCount
		}
	}
	return 0
}

// AddChild creates a new leaf node under n with descCount 0, links it into
// n's child list, then walks from n to the root incrementing, at every
// level, the ChildInfo entry for the branch that leads down to the new
// leaf.
func (n *HeaderNode) AddChild(header *types.HeaderMgr, syncState *syncproto.SyncState) *HeaderNode {
	child := &HeaderNode{header: header, parent: n, syncState: syncState}
	n.children = append(n.children, &ChildInfo{Child: child})

	for cur := n; cur.parent != nil; cur = cur.parent {
		for _, ci := range cur.parent.children {
			if ci.Child == cur {
				ci.DescCount++
				break
			}
		}
	}
	return child
}

// ReleaseChildHasNDesc finds the first direct child whose descCount is at
// least n, detaches it (severing the parent link in both directions), and
// returns it. Returns nil if no child qualifies. The detached sub-branch
// is left intact; it is simply no longer reachable from this node.
func (n *HeaderNode) ReleaseChildHasNDesc(count uint64) *HeaderNode {
	for i, ci := range n.children {
		if ci.DescCount >= count {
			child := ci.Child
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			child.parent = nil
			return child
		}
	}
	return nil
}
