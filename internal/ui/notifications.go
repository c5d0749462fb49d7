package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

const notificationTTL = 5 * time.Second

type Notification struct {
	Message   string
	CreatedAt time.Time
}

type NotificationManager struct {
	active *Notification
	style  lipgloss.Style
	now    func() time.Time
}

func NewNotificationManager(style lipgloss.Style) *NotificationManager {
	return &NotificationManager{style: style, now: time.Now}
}

// SetMessage shows a transient informational notification.
func (nm *NotificationManager) SetMessage(msg string) {
	nm.active = &Notification{
		Message:   msg,
		CreatedAt: nm.now(),
	}
}

// Active returns the current notification if it has not expired.
func (nm *NotificationManager) Active() *Notification {
	if nm.active == nil || nm.now().Sub(nm.active.CreatedAt) > notificationTTL {
		return nil
	}
	return nm.active
}

// Expire clears expired notifications. Call from Update(), not View().
func (nm *NotificationManager) Expire() {
	if nm.active != nil && nm.Active() == nil {
		nm.active = nil
	}
}

func (nm *NotificationManager) Render(width int) string {
	n := nm.Active()
	if n == nil {
		return ""
	}
	style := nm.style
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(n.Message)
}
