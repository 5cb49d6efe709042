package model

import "time"

type Notification struct {
	ID        int64      `json:"id"`
	Room      string     `json:"room"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MarkRead flags the notification as read. The first read time is kept.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.Read {
		return false
	}
	t := at.UTC()
	n.Read = true
	n.ReadAt = &t
	return true
}
