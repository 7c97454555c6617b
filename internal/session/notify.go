package session

// NotificationType is the severity shown with a notification.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// Notification is a one-shot message for the user.
type Notification struct {
	ID      int64            `json:"id"`
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// notify queues a notification. The caller holds s.mu.
func (s *Session) notify(typ NotificationType, msg string) {
	s.nextNoteID++
	s.notifications = append(s.notifications, Notification{ID: s.nextNoteID, Type: typ, Message: msg})
}

// Notifications returns and clears the pending notifications.
func (m *Manager) Notifications(id string) ([]Notification, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out, nil
}
