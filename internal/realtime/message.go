package realtime

type SSEEvent string

const (
	SSEEventNotificationCreated SSEEvent = "NotificationCreated"
	SSEEventNotificationRead    SSEEvent = "NotificationRead"
	SSEEventSuggestionsUpdated  SSEEvent = "SuggestionsUpdated"
	SSEEventInsightsUpdated     SSEEvent = "InsightsUpdated"
	SSEEventWorkPatternUpdated  SSEEvent = "WorkPatternUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user channel every stream subscribes to.
func UserChannel(userID string) string { return "user:" + userID }
