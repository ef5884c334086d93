package core

import "github.com/google/uuid"

// Client is a live connection handle as seen by the registry. The ID is
// the group-membership key; Events carries broadcast deliveries to the
// connection's write loop.
type Client struct {
	ID       string
	Identity Identity
	Events   chan *Event
}

// NewClient constructs a client handle for a resolved identity.
func NewClient(identity Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		Events:   make(chan *Event, 16),
	}
}
