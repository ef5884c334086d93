package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Room represents a named chat room. Rooms are created once and are
// immutable afterwards as far as the relay core is concerned.
type Room struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message represents a persisted chat message. Room and user references
// are nullable so a stored message can outlive its author or room.
type Message struct {
	ID        int64
	RoomID    *int64
	UserID    *int64
	Body      string
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with a pre-hashed password.
	CreateUser(ctx context.Context, email, passwordHash, displayName string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// RoomStore handles room persistence and lookup. The relay core consumes
// only GetRoomByName; listing and creation back the REST surface.
type RoomStore interface {
	// CreateRoom creates a new room with a unique name.
	CreateRoom(ctx context.Context, name string) (*Room, error)

	// GetRoomByName retrieves a room by its unique name.
	// Returns ErrNotFound when no such room exists.
	GetRoomByName(ctx context.Context, name string) (*Room, error)

	// ListRooms lists all rooms ordered by creation time.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence. The timestamp of a stored
// message is assigned by the store at persist time, never by the caller.
type MessageStore interface {
	// SaveMessage persists a message and returns the stored record,
	// including its server-assigned ID and timestamp.
	SaveMessage(ctx context.Context, roomID, userID int64, body string) (*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
