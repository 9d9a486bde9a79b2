package syncproto

import (
	"math/big"
	"testing"

	"github.com/eth2030/eclipsemon/events"
	"github.com/eth2030/eclipsemon/rlp"
	"github.com/eth2030/eclipsemon/trie"
	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

// headerForReceipts builds a HeaderMgr whose bloom and receipts-root match
// receipts exactly, so events.CheckEvents's reconstruction step succeeds.
func headerForReceipts(t *testing.T, trustedTime uint64, receipts []*types.Receipt) *types.HeaderMgr {
	t.Helper()
	var bloom types.BloomFilter
	tr := trie.New()
	for i, r := range receipts {
		bloom.Or(r.Bloom)
		key, err := rlp.EncodeToBytes(uint(i))
		require.NoError(t, err)
		val, err := r.EncodeRLP()
		require.NoError(t, err)
		require.NoError(t, tr.Put(key, val))
	}

	h := &types.Header{
		Bloom:       bloom,
		ReceiptHash: tr.Hash(),
		Difficulty:  big.NewInt(0),
		Number:      big.NewInt(1),
	}
	raw, err := h.EncodeRLP()
	require.NoError(t, err)
	mgr, err := types.NewHeaderMgr(raw, trustedTime)
	require.NoError(t, err)
	return mgr
}

// S5: a matching sync-contract log inside the liveness window flips the
// current epoch's SyncState and cancels the one-shot listener.
func TestSyncMsgMgrMatchingLogSetsSynced(t *testing.T) {
	em := events.NewEventManager()
	addr := types.HexToContractAddr("0xsync")
	eventSign := types.HexToHash32("0xdeadbeef")
	sessionID := types.SessionID{0x01}
	var nonce types.SyncNonce
	nonce[0] = 0x42

	mgr := NewSyncMsgMgr(em, addr, eventSign, sessionID, 100, 1000, nonce)
	require.Equal(t, 1, em.GetNumOfListeners())
	require.False(t, mgr.Current().IsSynced())

	topics := []types.Hash32{eventSign, sessionIDTopic(sessionID), types.Hash32(nonce)}
	log := &types.Log{Address: addr, Topics: topics}
	receipt := &types.Receipt{Status: 1, Bloom: types.LogsBloom([]*types.Log{log}), Logs: []*types.Log{log}}
	header := headerForReceipts(t, 1050, []*types.Receipt{receipt})

	err := em.CheckEvents(header, func(uint64) ([]*types.Receipt, error) {
		return []*types.Receipt{receipt}, nil
	})
	require.NoError(t, err)
	require.True(t, mgr.Current().IsSynced())
	require.Equal(t, 0, em.GetNumOfListeners(), "the one-shot listener must cancel itself")
}

func TestSyncMsgMgrLogOutsideWindowDoesNotSetSynced(t *testing.T) {
	em := events.NewEventManager()
	addr := types.HexToContractAddr("0xsync")
	eventSign := types.HexToHash32("0xdeadbeef")
	sessionID := types.SessionID{0x01}
	nonce := types.SyncNonce{0x42}

	mgr := NewSyncMsgMgr(em, addr, eventSign, sessionID, 10, 1000, nonce)

	topics := []types.Hash32{eventSign, sessionIDTopic(sessionID), types.Hash32(nonce)}
	log := &types.Log{Address: addr, Topics: topics}
	receipt := &types.Receipt{Status: 1, Bloom: types.LogsBloom([]*types.Log{log}), Logs: []*types.Log{log}}
	header := headerForReceipts(t, 5000, []*types.Receipt{receipt})

	err := em.CheckEvents(header, func(uint64) ([]*types.Receipt, error) {
		return []*types.Receipt{receipt}, nil
	})
	require.NoError(t, err)
	require.False(t, mgr.Current().IsSynced())
}

func TestNewSyncStateCancelsPreviousListener(t *testing.T) {
	em := events.NewEventManager()
	addr := types.HexToContractAddr("0xsync")
	eventSign := types.HexToHash32("0xdeadbeef")
	sessionID := types.SessionID{0x01}

	mgr := NewSyncMsgMgr(em, addr, eventSign, sessionID, 100, 1000, types.SyncNonce{0x01})
	require.Equal(t, 1, em.GetNumOfListeners())

	mgr.NewSyncState(2000, types.SyncNonce{0x02})
	require.Equal(t, 1, em.GetNumOfListeners(), "rotating epochs must not leak the old listener")
	require.Equal(t, uint64(2000), mgr.Current().GenTime())
}
