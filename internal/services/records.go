package services

import (
	"github.com/pocketbase/pocketbase/core"

	"meetmaster/models"
)

// EventFromRecord maps a persisted events record onto the model type the
// lifecycle rules and access predicates operate on.
func EventFromRecord(record *core.Record) *models.Event {
	return &models.Event{
		ID:          record.Id,
		Title:       record.GetString("title"),
		Description: record.GetString("description"),
		Date:        record.GetDateTime("date").Time(),
		Location:    record.GetString("location"),
		Status:      models.EventStatus(record.GetString("status")),
		OwnerID:     record.GetString("owner"),
		AttendeeIDs: record.GetStringSlice("attendees"),
		Created:     record.GetDateTime("created").Time(),
		Updated:     record.GetDateTime("updated").Time(),
	}
}

// UserFromRecord maps a users record onto the model type.
func UserFromRecord(record *core.Record) *models.User {
	if record == nil {
		return nil
	}
	return &models.User{
		ID:          record.Id,
		Username:    record.GetString("username"),
		Email:       record.GetString("email"),
		FirstName:   record.GetString("first_name"),
		LastName:    record.GetString("last_name"),
		Avatar:      record.GetString("avatar"),
		IsSuperuser: record.GetBool("is_superuser"),
		Created:     record.GetDateTime("created").Time(),
	}
}
