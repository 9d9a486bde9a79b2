//go:build !devoverrides

package monitor

import "github.com/eth2030/eclipsemon/types"

// devFixedSessionID, when true, pins the SessionID and sync nonce the
// monitor draws to fixed development values instead of random ones, and
// disables automatic sync-state refresh. Selectable only at build time via
// the devoverrides tag; must never be enabled in production. This file is
// the default (tag absent): all overrides are off.
const devFixedSessionID = false
const devDisableSyncRefresh = false

var fixedSessionID types.SessionID
var fixedSyncNonce types.SyncNonce
