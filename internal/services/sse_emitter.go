package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
	"github.com/yungbote/workpulse-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers to clients connected to this process.
type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes to every instance; each instance forwards bus
// messages into its own hub.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("realtime publish failed", "channel", msg.Channel, "event", msg.Event, "error", err)
	}
}

func emitToUser(ctx context.Context, emit SSEEmitter, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if emit == nil || userID == uuid.Nil {
		return
	}
	observability.Current().IncSSEEvent(string(event))
	emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID.String()),
		Event:   event,
		Data:    data,
	})
}
