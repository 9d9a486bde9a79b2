//go:build devoverrides

package monitor

import "github.com/eth2030/eclipsemon/types"

// Built only with -tags devoverrides: pins SessionID and the sync nonce to
// fixed test vectors and disables automatic sync-state refresh. Never
// enable this tag in a production build.
const devFixedSessionID = true
const devDisableSyncRefresh = true

var fixedSessionID = types.SessionID{
	0x52, 0xfd, 0xfc, 0x07, 0x21, 0x82, 0x65, 0x4f,
	0x16, 0x3f, 0x5f, 0x0f, 0x9a, 0x62, 0x1d, 0x72,
}

var fixedSyncNonce = types.SyncNonce{
	0x95, 0x66, 0xc7, 0x4d, 0x10, 0x03, 0x7c, 0x4d,
	0x7b, 0xbb, 0x04, 0x07, 0xd1, 0xe2, 0xc6, 0x49,
	0x81, 0x85, 0x5a, 0xd8, 0x68, 0x1d, 0x0d, 0x86,
	0xd1, 0xe9, 0x1e, 0x00, 0x16, 0x79, 0x39, 0xcb,
}
