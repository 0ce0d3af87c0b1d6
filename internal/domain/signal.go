package domain

import (
	"encoding/json"
	"strings"
)

// SignalKind names the negotiation payload a mailbox record carries.
type SignalKind string

const (
	SignalOffer  SignalKind = "offer"
	SignalAnswer SignalKind = "answer"
	SignalICE    SignalKind = "ice"
)

// DefaultPeerTag is used when the caller does not distinguish counterparties.
const DefaultPeerTag = "default"

// SignalRecord is one mailbox entry. Payload is opaque to the service.
type SignalRecord struct {
	Kind      SignalKind      `json:"type"`
	Payload   json.RawMessage `json:"data"`
	CreatedAt int64           `json:"timestamp"`
	PeerTag   string          `json:"peer"`
}

// SanitizeRoom strips every character outside [A-Za-z0-9_-] so that an
// untrusted room name is safe as a lookup key or path component. Both the
// push and poll paths go through this.
func SanitizeRoom(room string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			return r
		}
		return -1
	}, room)
}
