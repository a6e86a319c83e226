package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of a serialized message
	MessageBufferSize = 4096
)

// Message types
const (
	MessageTypeClientHello     = "hello"
	MessageTypeClientFlip      = "flip"
	MessageTypeClientLook      = "look"
	MessageTypeClientWatch     = "watch"
	MessageTypeClientTransform = "transform"
	MessageTypeServerWelcome   = "welcome"
	MessageTypeServerView      = "view"
	MessageTypeServerError     = "error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ClientHello binds a connection to a player name. An empty name requests
// a generated guest identity.
type ClientHello struct {
	Player string `json:"player"`
}

// ClientFlip identifies the card the player wants to turn over.
type ClientFlip struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ClientTransform names a server-side content transformation to run.
type ClientTransform struct {
	Fn string `json:"fn"`
}

// ServerWelcome acknowledges a hello with the bound identity and the
// board dimensions.
type ServerWelcome struct {
	ClientID uint32 `json:"clientID"`
	Player   string `json:"player"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
}

// ServerView carries a rendered view of the board for the receiving player.
type ServerView struct {
	View string `json:"view"`
}

// ServerError reports a rejected request. Code matches the rule that
// rejected it.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
