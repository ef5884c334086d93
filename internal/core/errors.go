package core

import "errors"

var (
	// ErrNotAuthenticated rejects an anonymous identity at room join.
	// The connection is closed without an error frame.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRoomNotFound rejects a join for a room that does not exist.
	// The connection is closed without an error frame so probes cannot
	// enumerate room names.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidMessage terminates a session that sent an unauthenticated
	// or malformed message. One error frame is emitted before closing.
	ErrInvalidMessage = errors.New("invalid message")
)
