package update

import (
	"github.com/sandeepkv93/daybook/internal/views"
)

const maxShownNotifications = 5

func (m *Model) dismissNotifications() {
	if m.notes != nil {
		m.notes.DeactivateAll()
	}
	m.Notifications = nil
	m.Status = StatusBar{Text: "notifications dismissed"}
}

func (m Model) renderNotificationsView() string {
	items := m.Notifications
	if len(items) > maxShownNotifications {
		items = items[len(items)-maxShownNotifications:]
	}
	data := make([]views.NotificationData, 0, len(items))
	for _, n := range items {
		data = append(data, views.NotificationData{
			Kind:  string(n.Kind),
			Title: n.Title,
			Body:  n.Body,
			At:    n.At.Format("15:04"),
		})
	}
	return views.RenderNotifications(data)
}
