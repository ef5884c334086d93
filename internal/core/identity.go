package core

// Identity is the principal resolved for a connection at handshake time.
// It is immutable for the connection's lifetime. The zero value is the
// anonymous identity.
type Identity struct {
	UserID      int64
	Email       string
	DisplayName string
}

// Anonymous returns the unauthenticated identity marker.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated reports whether the identity resolved to a real user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// Name returns the display name if set, falling back to the email.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}
