package http

import (
	"github.com/belamverse/quickchat-backend/internal/core"
	"github.com/belamverse/quickchat-backend/internal/proto"
)

// broadcastFrame maps a registry event onto the outbound wire frame.
func broadcastFrame(event *core.Event) proto.Broadcast {
	return proto.Broadcast{
		User:      event.User,
		Message:   event.Text,
		Timestamp: event.CreatedAt.Format(proto.TimestampFormat),
	}
}
