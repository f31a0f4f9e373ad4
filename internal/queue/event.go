// Package queue defines message payloads exchanged over the message broker
// and the background dispatcher that forwards them to the chat channel.
package queue

import "fmt"

// NotificationQueueName is the durable queue carrying outbound chat
// notifications.
const NotificationQueueName = "show.notifications"

// Notification kinds.
const (
	KindBinAssigned = "bin_assigned"
	KindNewShow     = "new_show"
)

// NotificationEvent is published for every successful bin assignment and
// for every show reset.  It carries enough for downstream consumers to
// format the chat message without querying session state.
type NotificationEvent struct {
	Kind       string `json:"kind"`
	Username   string `json:"username,omitempty"`
	Bin        int    `json:"bin,omitempty"`
	ShowID     string `json:"show_id"`
	OccurredAt string `json:"occurred_at"`
}

// Text renders the plain-text chat message for this event.
func (e NotificationEvent) Text() string {
	switch e.Kind {
	case KindBinAssigned:
		return fmt.Sprintf("Username: %s | Bin: %d", e.Username, e.Bin)
	case KindNewShow:
		return fmt.Sprintf("New show: %s", e.ShowID)
	}
	return ""
}
