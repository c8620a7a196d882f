package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"meetmaster/internal/access"
	"meetmaster/internal/services"
	"meetmaster/internal/status"
	"meetmaster/models"
)

const (
	cancelSubject     = "Event Cancellation Notification"
	dateChangeSubject = "Event Date Change Notification"
	attendSubject     = "Event Attendance Confirmation"
	unattendSubject   = "Event Attendance Update"
)

type EventHandler struct {
	app      core.App
	events   *services.EventService
	notifier *services.NotifyService
}

func NewEventHandler(app core.App, events *services.EventService, notifier *services.NotifyService) *EventHandler {
	return &EventHandler{
		app:      app,
		events:   events,
		notifier: notifier,
	}
}

// List - Public event listing, newest date first
func (h *EventHandler) List(e *core.RequestEvent) error {
	records := []*core.Record{}
	err := h.app.RecordQuery("events").
		OrderBy("date DESC").
		All(&records)
	if err != nil {
		return apis.NewBadRequestError("Failed to list events", err)
	}

	result := make([]map[string]any, 0, len(records))
	for _, record := range records {
		result = append(result, eventResponse(services.EventFromRecord(record)))
	}
	return e.JSON(http.StatusOK, result)
}

// Get - Public event detail
func (h *EventHandler) Get(e *core.RequestEvent) error {
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, eventResponse(services.EventFromRecord(record)))
}

// Create - Create an event owned by the authenticated user
func (h *EventHandler) Create(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
		Location    string `json:"location"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Title == "" {
		return apis.NewBadRequestError("Title is required", nil)
	}

	date, err := types.ParseDateTime(req.Date)
	if err != nil || date.IsZero() {
		return apis.NewBadRequestError("Invalid date", err)
	}

	record, err := h.events.Create(e.Auth.Id, models.EventDraft{
		Title:       req.Title,
		Description: req.Description,
		Date:        date.Time(),
		Location:    req.Location,
	})
	if err != nil {
		return translateErr(err, "Failed to create event")
	}

	return e.JSON(http.StatusCreated, eventResponse(services.EventFromRecord(record)))
}

// Update - Owner-only field edits; triggers notifications on real changes
func (h *EventHandler) Update(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	event := services.EventFromRecord(record)
	if !access.IsOwner(services.UserFromRecord(e.Auth), event) {
		return apis.NewForbiddenError("Only the owner can edit this event", nil)
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Date        *string `json:"date"`
		Location    *string `json:"location"`
		Status      *string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	changes := models.EventChanges{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.Date != nil {
		date, err := types.ParseDateTime(*req.Date)
		if err != nil || date.IsZero() {
			return apis.NewBadRequestError("Invalid date", err)
		}
		d := date.Time()
		changes.Date = &d
	}
	if req.Status != nil {
		s := models.EventStatus(*req.Status)
		changes.Status = &s
	}

	changed, err := h.events.Update(record, changes)
	if err != nil {
		return translateErr(err, "Failed to update event")
	}

	updated := services.EventFromRecord(record)
	ctx := e.Request.Context()
	if changed.Status {
		message := fmt.Sprintf("The event '%s' has been canceled.", updated.Title)
		if err := h.notifier.EnqueueFanout(ctx, updated.ID, cancelSubject, message); err != nil {
			log.Printf("event %s: enqueue cancellation notification: %v", updated.ID, err)
		}
	}
	if changed.Date {
		message := fmt.Sprintf("The date for the event '%s' has been changed to %s.",
			updated.Title, updated.Date.Format(time.RFC3339))
		if err := h.notifier.EnqueueFanout(ctx, updated.ID, dateChangeSubject, message); err != nil {
			log.Printf("event %s: enqueue date change notification: %v", updated.ID, err)
		}
	}

	return e.JSON(http.StatusOK, eventResponse(updated))
}

// Cancel - Owner-only cancellation; notifies attendees once per real change
func (h *EventHandler) Cancel(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	event := services.EventFromRecord(record)
	if !access.IsOwner(services.UserFromRecord(e.Auth), event) {
		return apis.NewForbiddenError("Only the owner can cancel this event", nil)
	}

	changed, err := h.events.Cancel(record)
	if err != nil {
		return translateErr(err, "Failed to cancel event")
	}

	if changed {
		message := fmt.Sprintf("The event '%s' has been canceled.", event.Title)
		if err := h.notifier.EnqueueFanout(e.Request.Context(), event.ID, cancelSubject, message); err != nil {
			log.Printf("event %s: enqueue cancellation notification: %v", event.ID, err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"status": string(models.StatusCanceled),
	})
}

// Delete - Owner-only hard delete
func (h *EventHandler) Delete(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	if !access.IsOwner(services.UserFromRecord(e.Auth), services.EventFromRecord(record)) {
		return apis.NewForbiddenError("Only the owner can delete this event", nil)
	}

	if err := h.app.Delete(record); err != nil {
		return apis.NewBadRequestError("Failed to delete event", err)
	}
	return e.NoContent(http.StatusNoContent)
}

// Attendees - Attendee list, visible to the owner and attendees only
func (h *EventHandler) Attendees(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	event := services.EventFromRecord(record)
	canView := access.AnyEvent(access.IsOwner, access.IsAttendee)
	if !canView(services.UserFromRecord(e.Auth), event) {
		return apis.NewForbiddenError("Not authorized to view attendee details", nil)
	}

	attendees := []map[string]any{}
	if len(event.AttendeeIDs) > 0 {
		users, err := h.app.FindRecordsByIds("users", event.AttendeeIDs)
		if err != nil {
			return apis.NewBadRequestError("Failed to load attendees", err)
		}
		for _, user := range users {
			attendees = append(attendees, map[string]any{
				"id":       user.Id,
				"username": user.GetString("username"),
			})
		}
	}
	return e.JSON(http.StatusOK, attendees)
}

// Attend - Add the authenticated user to the attendee set
func (h *EventHandler) Attend(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	added, err := h.events.AddAttendee(record, e.Auth.Id)
	if err != nil {
		return translateErr(err, "Failed to join event")
	}

	if added {
		title := record.GetString("title")
		message := fmt.Sprintf("You have been added as an attendee to '%s'.", title)
		if err := h.notifier.EnqueueDirect(e.Request.Context(), record.Id, e.Auth.Id, attendSubject, message); err != nil {
			log.Printf("event %s: enqueue attend confirmation: %v", record.Id, err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{"status": "attendee added"})
}

// Unattend - Remove the authenticated user from the attendee set
func (h *EventHandler) Unattend(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	record, err := h.loadEvent(e)
	if err != nil {
		return err
	}

	removed, err := h.events.RemoveAttendee(record, e.Auth.Id)
	if err != nil {
		return translateErr(err, "Failed to leave event")
	}

	if removed {
		title := record.GetString("title")
		message := fmt.Sprintf("You have been removed from '%s'.", title)
		if err := h.notifier.EnqueueDirect(e.Request.Context(), record.Id, e.Auth.Id, unattendSubject, message); err != nil {
			log.Printf("event %s: enqueue unattend confirmation: %v", record.Id, err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{"status": "attendee removed"})
}

func (h *EventHandler) loadEvent(e *core.RequestEvent) (*core.Record, error) {
	id := e.Request.PathValue("eventId")
	if id == "" {
		return nil, apis.NewBadRequestError("Event ID is required", nil)
	}
	record, err := h.app.FindRecordById("events", id)
	if err != nil {
		return nil, apis.NewNotFoundError("Event not found", errors.Join(status.ErrEventNotFound, err))
	}
	return record, nil
}

func eventResponse(event *models.Event) map[string]any {
	return map[string]any{
		"id":              event.ID,
		"title":           event.Title,
		"description":     event.Description,
		"date":            event.Date.Format(time.RFC3339),
		"location":        event.Location,
		"status":          string(event.Status),
		"owner":           event.OwnerID,
		"total_attendees": len(event.AttendeeIDs),
		"created":         event.Created.Format(time.RFC3339),
		"updated":         event.Updated.Format(time.RFC3339),
	}
}

// translateErr maps validation failures to their own message and
// everything else to a generic bad request.
func translateErr(err error, fallback string) error {
	var ve *status.ValidationError
	if errors.As(err, &ve) {
		return apis.NewBadRequestError(ve.Message, err)
	}
	return apis.NewBadRequestError(fallback, err)
}
