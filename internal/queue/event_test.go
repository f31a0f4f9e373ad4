package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationEventText(t *testing.T) {
	ev := NotificationEvent{Kind: KindBinAssigned, Username: "GlamBuyer22", Bin: 7}
	assert.Equal(t, "Username: GlamBuyer22 | Bin: 7", ev.Text())

	ev = NotificationEvent{Kind: KindNewShow, ShowID: "20250131_141503"}
	assert.Equal(t, "New show: 20250131_141503", ev.Text())

	ev = NotificationEvent{Kind: "unknown"}
	assert.Empty(t, ev.Text())
}
