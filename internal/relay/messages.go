package relay

import "encoding/json"

// Inbound event types, named as the browser client emits them.
const (
	TypeJoinRoom  = "join-room"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeICE       = "ice-candidate"
	TypeChat      = "chat-message"
	TypeTyping    = "typing"
	TypeHighlight = "highlight-product"
)

// Outbound event types.
const (
	TypeWelcome            = "welcome"
	TypeUserJoined         = "user-joined"
	TypeUserLeft           = "user-left"
	TypeUserTyping         = "user-typing"
	TypeProductHighlighted = "product-highlighted"
	TypeError              = "error"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(typ string, payload any) Message {
	raw, _ := json.Marshal(payload)
	return Message{Type: typ, Payload: raw}
}

type JoinPayload struct {
	Room string `json:"room"`
}

// PeerPayload announces membership changes; it carries only the peer's
// connection id, never its history.
type PeerPayload struct {
	Room    string `json:"room"`
	UserID  string `json:"userId"`
	Viewers int    `json:"viewers,omitempty"`
}

type OfferPayload struct {
	Room  string          `json:"room"`
	Offer json.RawMessage `json:"offer"`
	From  string          `json:"from,omitempty"`
}

type AnswerPayload struct {
	To     string          `json:"to,omitempty"`
	Answer json.RawMessage `json:"answer"`
	From   string          `json:"from,omitempty"`
}

type ICEPayload struct {
	Room      string          `json:"room"`
	Candidate json.RawMessage `json:"candidate"`
	From      string          `json:"from,omitempty"`
}

type ChatInPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ChatOutPayload is the canonical stored record every member receives,
// sender included: the server-assigned id and timestamp, not local clocks.
type ChatOutPayload struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TypingPayload struct {
	Room     string `json:"room"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
}

type HighlightPayload struct {
	Room        string          `json:"room"`
	ProductID   json.RawMessage `json:"productId"`
	ProductData json.RawMessage `json:"productData,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
