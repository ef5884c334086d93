package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/belamverse/quickchat-backend/internal/store"
)

// Session is the per-connection state machine: authenticate, resolve the
// room, join the group, then relay inbound messages until the connection
// terminates. A session joins exactly one room for its whole lifetime.
type Session struct {
	registry *Registry
	rooms    store.RoomStore
	messages store.MessageStore
	client   *Client
	roomName string
	room     *store.Room

	joined bool
	once   sync.Once
	log    *zerolog.Logger
}

// NewSession builds a session for a connection handle bound to roomName.
// The identity carried by the client was resolved at handshake time.
func NewSession(registry *Registry, rooms store.RoomStore, messages store.MessageStore, client *Client, roomName string, logger *zerolog.Logger) *Session {
	return &Session{
		registry: registry,
		rooms:    rooms,
		messages: messages,
		client:   client,
		roomName: roomName,
		log:      logger,
	}
}

// Client returns the connection handle owned by this session.
func (s *Session) Client() *Client {
	return s.client
}

// Join moves the session from Connecting to Joined. Anonymous identities
// are rejected before any group registration; a missing room aborts the
// same way. Both are terminal for this connection attempt.
func (s *Session) Join(ctx context.Context) error {
	if !s.client.Identity.Authenticated() {
		s.log.Debug().Str("room", s.roomName).Msg("rejecting anonymous connection")
		return ErrNotAuthenticated
	}

	room, err := s.rooms.GetRoomByName(ctx, s.roomName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Debug().Str("room", s.roomName).Msg("room does not exist, closing connection")
			return ErrRoomNotFound
		}
		return fmt.Errorf("look up room %q: %w", s.roomName, err)
	}

	s.room = room
	s.registry.Join(room.Name, s.client)
	s.joined = true

	s.log.Info().
		Str("room", room.Name).
		Str("user", s.client.Identity.Name()).
		Str("client_id", s.client.ID).
		Msg("client joined room")
	return nil
}

// Receive handles one inbound message. The text is the extracted
// "message" field of the inbound frame; empty means missing or
// unparseable. An unauthenticated sender or an empty text terminates the
// session with ErrInvalidMessage and persists nothing. Otherwise the
// message is persisted first and broadcast to the other group members
// only after the store accepted it.
func (s *Session) Receive(ctx context.Context, text string) error {
	if !s.client.Identity.Authenticated() || text == "" {
		return ErrInvalidMessage
	}

	msg, err := s.messages.SaveMessage(ctx, s.room.ID, s.client.Identity.UserID, text)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	s.registry.Broadcast(s.room.Name, &Event{
		Room:      s.room.Name,
		User:      s.client.Identity.Name(),
		Text:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}, s.client)

	return nil
}

// Close leaves the room group if Join succeeded. Safe to call from any
// state and idempotent; the second call is a no-op.
func (s *Session) Close(reason string) {
	s.once.Do(func() {
		if s.joined {
			s.registry.Leave(s.room.Name, s.client)
		}
		s.log.Info().
			Str("room", s.roomName).
			Str("client_id", s.client.ID).
			Str("reason", reason).
			Msg("session closed")
	})
}
