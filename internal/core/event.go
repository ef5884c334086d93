package core

import "time"

// Event is a broadcast delivery dispatched to every member of a room
// group. The transport layer maps it onto the outbound wire frame.
type Event struct {
	Room      string
	User      string
	Text      string
	CreatedAt time.Time
}
