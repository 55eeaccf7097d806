package models

// Push event kinds delivered over the notification channel.
const (
	EventNewTask      = "new_task"
	EventDeleteTask   = "delete_task"
	EventUpdateStatus = "update_status"
)

// PushEvent is a cache-invalidation hint from the backend. The payload is
// never applied to local state directly; a matching event only triggers a
// refresh against the authoritative task list.
type PushEvent struct {
	Event     string `json:"event"`
	UserID    int    `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// Known reports whether the event kind is one the board reacts to.
func (e PushEvent) Known() bool {
	switch e.Event {
	case EventNewTask, EventDeleteTask, EventUpdateStatus:
		return true
	}
	return false
}
