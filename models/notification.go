package models

import (
	"time"
)

// Notification is one append-only log row per dispatch, written by the
// dispatcher regardless of how many recipients were reached.
type Notification struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotifyJob is the unit placed on the dispatch queue. An empty UserID
// means fan-out to the event's attendee set at dispatch time; otherwise
// the job targets that single user.
type NotifyJob struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id,omitempty"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Kind labels the dispatch shape, used for metrics.
func (j NotifyJob) Kind() string {
	if j.UserID != "" {
		return "direct"
	}
	return "fanout"
}

// Recipient is a resolved delivery target.
type Recipient struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
