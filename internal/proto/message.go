package proto

// TimestampFormat is the wire format for broadcast timestamps, fixed to
// second precision.
const TimestampFormat = "2006-01-02 15:04:05"

// StatusConnected is the status marker of the handshake confirmation.
const StatusConnected = "connected"

// InvalidMessageText is the single error payload the protocol defines.
// It is sent once, immediately before the connection is closed.
const InvalidMessageText = "User not authenticated or invalid message format."

// Inbound is a chat message frame received from the client.
type Inbound struct {
	Message string `json:"message"`
}

// Connected is the one-time confirmation sent after a successful join.
type Connected struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Broadcast is the delivery frame fanned out to room members.
type Broadcast struct {
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Error is the terminal error frame.
type Error struct {
	Error string `json:"error"`
}
