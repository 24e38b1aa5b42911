package websocket

// ClientInMessage is the envelope for messages from client to server.
// Types: "chat" | "command" | "status"
type ClientInMessage struct {
	Type          string                 `json:"type"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "event" | "result" | "state" | "error"
type ServerEnvelope struct {
	Type          string                 `json:"type"`
	Event         string                 `json:"event,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeChat    = "chat"
	ClientMessageTypeCommand = "command"
	ClientMessageTypeStatus  = "status"
)

// Server event types.
const (
	ServerEventChat          = "chat"
	ServerEventAnnouncement  = "announcement"
	ServerEventPrivate       = "private"
	ServerEventCommandResult = "command_result"
	ServerEventState         = "state"
	ServerEventGameEnded     = "game_ended"
)

// Server envelope types.
const (
	ServerTypeEvent  = "event"
	ServerTypeResult = "result"
	ServerTypeState  = "state"
	ServerTypeError  = "error"
)

// MaxChatMessageLength is the maximum allowed length for a chat message.
const MaxChatMessageLength = 2000

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// ValidClientMessageTypes are the only allowed values for ClientInMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeChat:    true,
	ClientMessageTypeCommand: true,
	ClientMessageTypeStatus:  true,
}
