package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"meetmaster/models"
)

// EventService owns the event lifecycle: creation, updates, cancellation
// and the periodic sweep that finalizes past events. The transition rules
// themselves live on models.Event; this layer does the record plumbing.
type EventService struct {
	app core.App
}

func NewEventService(app core.App) *EventService {
	return &EventService{app: app}
}

// Create validates the draft and persists a new incoming event owned by ownerID.
func (s *EventService) Create(ownerID string, draft models.EventDraft) (*core.Record, error) {
	event, err := models.NewEvent(ownerID, draft, time.Now())
	if err != nil {
		return nil, err
	}

	collection, err := s.app.FindCollectionByNameOrId("events")
	if err != nil {
		return nil, fmt.Errorf("events collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("title", event.Title)
	record.Set("description", event.Description)
	record.Set("date", event.Date)
	record.Set("location", event.Location)
	record.Set("status", string(event.Status))
	record.Set("owner", event.OwnerID)

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	return record, nil
}

// Update applies a change set to the record and reports which of the
// notification-relevant fields actually changed, so the caller can
// trigger notifications exactly once per real change.
func (s *EventService) Update(record *core.Record, changes models.EventChanges) (models.Changed, error) {
	event := EventFromRecord(record)

	changed, err := event.ApplyUpdate(changes, time.Now())
	if err != nil {
		return changed, err
	}

	record.Set("title", event.Title)
	record.Set("description", event.Description)
	record.Set("date", event.Date)
	record.Set("location", event.Location)
	record.Set("status", string(event.Status))

	if err := s.app.Save(record); err != nil {
		return models.Changed{}, fmt.Errorf("save event: %w", err)
	}
	return changed, nil
}

// Cancel moves an incoming event to canceled. Calling it on an already
// canceled event changes nothing and reports false.
func (s *EventService) Cancel(record *core.Record) (bool, error) {
	event := EventFromRecord(record)

	changed, err := event.Cancel()
	if err != nil || !changed {
		return false, err
	}

	record.Set("status", string(models.StatusCanceled))
	if err := s.app.Save(record); err != nil {
		return false, fmt.Errorf("save event: %w", err)
	}
	return true, nil
}

// AddAttendee adds userID to the attendee set. Reports false when the
// user was already attending.
func (s *EventService) AddAttendee(record *core.Record, userID string) (bool, error) {
	ids := record.GetStringSlice("attendees")
	for _, id := range ids {
		if id == userID {
			return false, nil
		}
	}

	record.Set("attendees", append(ids, userID))
	if err := s.app.Save(record); err != nil {
		return false, fmt.Errorf("save attendees: %w", err)
	}
	return true, nil
}

// RemoveAttendee removes userID from the attendee set. Reports false
// when the user was not attending.
func (s *EventService) RemoveAttendee(record *core.Record, userID string) (bool, error) {
	ids := record.GetStringSlice("attendees")
	remaining := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == len(ids) {
		return false, nil
	}

	record.Set("attendees", remaining)
	if err := s.app.Save(record); err != nil {
		return false, fmt.Errorf("save attendees: %w", err)
	}
	return true, nil
}

// Sweep bulk-transitions incoming events whose date has passed to
// finished, in batches. The status filter on the UPDATE keeps
// overlapping sweeps idempotent: a row another sweep already moved is
// simply not matched again. The sweep never notifies attendees.
func (s *EventService) Sweep(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff, err := types.ParseDateTime(now.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep cutoff: %w", err)
	}

	total := 0
	for {
		ids := []string{}
		err := s.app.DB().
			Select("id").
			From("events").
			Where(dbx.And(
				dbx.HashExp{"status": string(models.StatusIncoming)},
				dbx.NewExp("date < {:now}", dbx.Params{"now": cutoff.String()}),
			)).
			Limit(int64(batchSize)).
			WithContext(ctx).
			Column(&ids)
		if err != nil {
			return total, fmt.Errorf("sweep select: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}

		res, err := s.app.DB().
			Update(
				"events",
				dbx.Params{"status": string(models.StatusFinished)},
				dbx.And(
					dbx.In("id", args...),
					dbx.HashExp{"status": string(models.StatusIncoming)},
				),
			).
			WithContext(ctx).
			Execute()
		if err != nil {
			return total, fmt.Errorf("sweep update: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		}

		if len(ids) < batchSize {
			break
		}
	}
	return total, nil
}
