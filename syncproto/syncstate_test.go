package syncproto

import (
	"testing"

	"github.com/eth2030/eclipsemon/types"
	"github.com/stretchr/testify/require"
)

// Property 8: the liveness window is closed: headers timestamped before
// genTime or after genTime+maxWait never flip isSynced, and once flipped it
// never reverts.
func TestSyncStateSetSyncedWindow(t *testing.T) {
	st := newSyncState(1000, types.SyncNonce{}, 100)

	require.False(t, st.SetSynced(999))
	require.False(t, st.IsSynced())

	require.False(t, st.SetSynced(1101))
	require.False(t, st.IsSynced())

	require.True(t, st.SetSynced(1050))
	require.True(t, st.IsSynced())
}

func TestSyncStateNeverReverts(t *testing.T) {
	st := newSyncState(1000, types.SyncNonce{}, 100)
	require.True(t, st.SetSynced(1000))
	require.True(t, st.IsSynced())

	// A later call outside the window (or any call) must not un-set it.
	st.SetSynced(5000)
	require.True(t, st.IsSynced())
}

func TestSyncStateAcceptsBoundaryTimestamps(t *testing.T) {
	st := newSyncState(1000, types.SyncNonce{}, 100)
	require.True(t, st.SetSynced(1100)) // genTime + maxWait, inclusive
}
