package monitor

import (
	"crypto/rand"
	"time"

	"github.com/eth2030/eclipsemon/events"
	"github.com/eth2030/eclipsemon/log"
	"github.com/eth2030/eclipsemon/types"
	"github.com/google/uuid"
)

// Clock supplies the trusted receive-time used for everything but
// Bootstrap-I headers.
type Clock interface {
	NowInSec() uint64
}

// Rng fills b with random bytes, used to draw sync nonces. Session ids
// are drawn by newSessionID instead.
type Rng interface {
	Fill(b []byte)
}

// Logger is the monitor's structured-logging collaborator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ReceiptsGetter materializes a block's receipts list. Called at most once
// per header, only once the logs-bloom pre-filter has passed; documented
// as potentially slow.
type ReceiptsGetter = events.ReceiptsGetter

// HeaderCallback is invoked for both the "validated" and "confirmed"
// header events.
type HeaderCallback func(header *types.HeaderMgr)

// EventCallback is invoked once per matching log entry.
type EventCallback = events.Callback

// SystemClock wraps time.Now().Unix().
type SystemClock struct{}

// NowInSec implements Clock.
func (SystemClock) NowInSec() uint64 { return uint64(time.Now().Unix()) }

// CryptoRandRNG wraps crypto/rand.Read.
type CryptoRandRNG struct{}

// Fill implements Rng.
func (CryptoRandRNG) Fill(b []byte) { _, _ = rand.Read(b) }

// NewDefaultLogger returns the monitor's default logging collaborator: a
// child of the package-wide structured logger tagged with module
// "monitor".
func NewDefaultLogger() Logger {
	return log.Default().Module("monitor")
}

// newSessionID draws a fresh SessionID. Production builds wrap
// uuid.New(): a random 16-byte value, reused rather than hand-rolling a
// byte-fill loop over an Rng for an identifier that is opaque by
// construction. Overridden by the fixed development SessionID when built
// with the devoverrides tag; see devoverrides.go.
func newSessionID() types.SessionID {
	if devFixedSessionID {
		return fixedSessionID
	}
	id := uuid.New()
	var sid types.SessionID
	copy(sid[:], id[:])
	return sid
}

// newSyncNonce draws a fresh 32-byte sync nonce via rng, unless the
// devoverrides build tag pins it to the fixed development value.
func newSyncNonce(rng Rng) types.SyncNonce {
	if devFixedSessionID {
		return fixedSyncNonce
	}
	var n types.SyncNonce
	rng.Fill(n[:])
	return n
}
