package models

import (
	"time"

	"meetmaster/internal/status"
)

type EventStatus string

const (
	StatusIncoming EventStatus = "incoming"
	StatusFinished EventStatus = "finished"
	StatusCanceled EventStatus = "canceled"
)

// Terminal reports whether no further status transition is allowed.
func (s EventStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCanceled
}

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Status      EventStatus `json:"status"`
	OwnerID     string      `json:"owner"`
	AttendeeIDs []string    `json:"attendees"`
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated"`
}

// EventDraft carries the caller-supplied fields for event creation.
type EventDraft struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
}

// EventChanges is an optional-field change set for Update. A nil field
// means "leave unchanged"; a set field is applied after validation.
type EventChanges struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Status      *EventStatus
}

// Changed records which notification-relevant fields actually changed,
// comparing old against proposed values rather than mere presence.
type Changed struct {
	Status bool
	Date   bool
}

// NewEvent validates a draft and returns an incoming event owned by ownerID.
func NewEvent(ownerID string, draft EventDraft, now time.Time) (*Event, error) {
	if err := validateEventDate(draft.Date, now); err != nil {
		return nil, err
	}
	return &Event{
		Title:       draft.Title,
		Description: draft.Description,
		Date:        draft.Date,
		Location:    draft.Location,
		Status:      StatusIncoming,
		OwnerID:     ownerID,
	}, nil
}

// ApplyUpdate validates and applies a change set in place. The status
// field accepts only the incoming→canceled transition; any other status
// value, or a status write on a terminal event, is a validation failure.
func (e *Event) ApplyUpdate(changes EventChanges, now time.Time) (Changed, error) {
	var changed Changed

	if changes.Status != nil {
		if *changes.Status != StatusCanceled {
			return changed, status.Validation("status", "status can only be updated to 'canceled'")
		}
		if e.Status.Terminal() {
			return changed, status.Validation("status", "event is already "+string(e.Status))
		}
	}
	if changes.Date != nil {
		if err := validateEventDate(*changes.Date, now); err != nil {
			return changed, err
		}
	}

	if changes.Title != nil {
		e.Title = *changes.Title
	}
	if changes.Description != nil {
		e.Description = *changes.Description
	}
	if changes.Location != nil {
		e.Location = *changes.Location
	}
	if changes.Date != nil {
		changed.Date = !changes.Date.Equal(e.Date)
		e.Date = *changes.Date
	}
	if changes.Status != nil {
		changed.Status = *changes.Status != e.Status
		e.Status = *changes.Status
	}
	return changed, nil
}

// Cancel moves an incoming event to canceled. It is a no-op on an event
// that is already canceled and rejects a finished one.
func (e *Event) Cancel() (bool, error) {
	switch e.Status {
	case StatusCanceled:
		return false, nil
	case StatusFinished:
		return false, status.Validation("status", "finished events cannot be canceled")
	default:
		e.Status = StatusCanceled
		return true, nil
	}
}

// HasAttendee reports whether userID is in the attendee set.
func (e *Event) HasAttendee(userID string) bool {
	for _, id := range e.AttendeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func validateEventDate(date time.Time, now time.Time) error {
	if !date.After(now) {
		return status.Validation("date", "events cannot be scheduled in the past")
	}
	return nil
}
