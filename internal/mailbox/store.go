package mailbox

import (
	"context"
	"encoding/json"

	"github.com/streamcart/signal-service/internal/domain"
)

// Store is the rendezvous point for poll-mode peers. Records are keyed by
// (room, kind, peer-tag); room and peer-tag are sanitized before use.
//
// Unary signals (offer/answer) follow latest-wins: GetLatest returns the
// newest record and prunes everything older, so a repeated read with no
// intervening Put returns the same payload. ICE candidates are additive:
// DrainAll returns every record in arrival order and consumes them.
type Store interface {
	// Put writes a new record; prior records for the same key survive.
	Put(ctx context.Context, room string, kind domain.SignalKind, peerTag string, payload json.RawMessage) error

	// GetLatest returns the newest payload for the key, or nil when there is
	// none. Older records under the key are deleted as a side effect.
	GetLatest(ctx context.Context, room string, kind domain.SignalKind, peerTag string) (json.RawMessage, error)

	// DrainAll returns every payload for the key in arrival order and
	// deletes them. A record claimed by a concurrent reader is skipped, not
	// double-delivered.
	DrainAll(ctx context.Context, room string, kind domain.SignalKind, peerTag string) ([]json.RawMessage, error)

	// ClearRoom deletes every record under the room, all kinds and peers.
	ClearRoom(ctx context.Context, room string) error
}
