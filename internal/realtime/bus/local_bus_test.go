package bus

import (
	"context"
	"testing"

	"github.com/yungbote/workpulse-backend/internal/realtime"
)

func TestLocalBusForwards(t *testing.T) {
	b := NewLocalBus()
	var got []realtime.SSEMessage
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { got = append(got, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.SSEMessage{Channel: "user:1", Event: realtime.SSEEventNotificationCreated}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0].Channel != "user:1" {
		t.Fatalf("unexpected forwarded messages: %+v", got)
	}

	_ = b.Close()
	if err := b.Publish(context.Background(), msg); err == nil {
		t.Fatalf("expected error publishing on closed bus")
	}
}
