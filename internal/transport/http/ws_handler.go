package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/belamverse/quickchat-backend/internal/auth"
	"github.com/belamverse/quickchat-backend/internal/config"
	"github.com/belamverse/quickchat-backend/internal/core"
	"github.com/belamverse/quickchat-backend/internal/proto"
	"github.com/belamverse/quickchat-backend/internal/store"
)

// WSHandler upgrades room-scoped connections and bridges them to a
// core.Session.
type WSHandler struct {
	registry *core.Registry
	auth     *auth.Service
	store    store.Store
	cfg      *config.Config
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *core.Registry, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		auth:     authService,
		store:    st,
		cfg:      cfg,
		log:      logger,
	}
}

// Handle serves GET /ws/:room. The bearer token arrives as a ?token=
// query parameter; a failed validation downgrades the connection to
// anonymous rather than aborting the handshake.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	roomName := c.Param("room")

	identity, authErr := h.auth.Authenticate(ctx, c.Query("token"))
	if authErr != nil {
		h.log.Warn().Err(authErr).Msg("token validation failed, continuing as anonymous")
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.AllowedOrigins,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(identity)
	session := core.NewSession(h.registry, h.store, h.store, client, roomName, h.log)

	if err := session.Join(ctx); err != nil {
		session.Close(err.Error())
		// One close for every handshake failure, with no reason, so a
		// probe cannot tell a bad token from a missing room.
		conn.Close(websocket.StatusPolicyViolation, "")
		return
	}
	defer session.Close("connection closed")

	if err := wsjson.Write(ctx, conn, proto.Connected{
		Message: fmt.Sprintf("WebSocket connected to room %s", roomName),
		Status:  proto.StatusConnected,
	}); err != nil {
		h.log.Warn().Err(err).Str("client_id", client.ID).Msg("write connected frame")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
	case errors.Is(err, core.ErrInvalidMessage):
		status = websocket.StatusPolicyViolation
		reason = "invalid message"
	default:
		// CloseStatus returns -1 when err is not a close frame.
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		} else {
			status = websocket.StatusInternalError
			reason = "internal error"
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		// A frame that is not valid JSON carries no message text and is
		// rejected by the session as invalid.
		var inbound proto.Inbound
		_ = json.Unmarshal(data, &inbound)

		if err := session.Receive(ctx, inbound.Message); err != nil {
			if errors.Is(err, core.ErrInvalidMessage) {
				if writeErr := wsjson.Write(ctx, conn, proto.Error{Error: proto.InvalidMessageText}); writeErr != nil {
					return writeErr
				}
			}
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, broadcastFrame(event)); err != nil {
				h.log.Warn().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
