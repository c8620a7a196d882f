package services

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmaster/models"
)

func newEventRecord(t *testing.T) *core.Record {
	t.Helper()

	collection := core.NewBaseCollection("events")
	collection.Fields.Add(
		&core.TextField{Name: "title"},
		&core.TextField{Name: "description"},
		&core.DateField{Name: "date"},
		&core.TextField{Name: "location"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"incoming", "finished", "canceled"}},
		&core.TextField{Name: "owner"},
		&core.JSONField{Name: "attendees"},
	)

	return core.NewRecord(collection)
}

func TestEventFromRecord(t *testing.T) {
	record := newEventRecord(t)
	record.Id = "evt123"
	record.Set("title", "Go Meetup")
	record.Set("description", "monthly meetup")
	record.Set("date", "2026-09-10 18:00:00.000Z")
	record.Set("location", "Vientiane")
	record.Set("status", "incoming")
	record.Set("owner", "user1")
	record.Set("attendees", []string{"user2", "user3"})

	event := EventFromRecord(record)

	require.NotNil(t, event)
	assert.Equal(t, "evt123", event.ID)
	assert.Equal(t, "Go Meetup", event.Title)
	assert.Equal(t, "Vientiane", event.Location)
	assert.Equal(t, models.StatusIncoming, event.Status)
	assert.Equal(t, "user1", event.OwnerID)
	assert.Equal(t, []string{"user2", "user3"}, event.AttendeeIDs)

	expected, err := types.ParseDateTime("2026-09-10 18:00:00.000Z")
	require.NoError(t, err)
	assert.True(t, expected.Time().Equal(event.Date))
}

func TestUserFromRecord(t *testing.T) {
	collection := core.NewBaseCollection("users")
	collection.Fields.Add(
		&core.TextField{Name: "username"},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "first_name"},
		&core.TextField{Name: "last_name"},
		&core.TextField{Name: "avatar"},
		&core.BoolField{Name: "is_superuser"},
	)

	record := core.NewRecord(collection)
	record.Id = "user1"
	record.Set("username", "alice")
	record.Set("email", "alice@example.com")
	record.Set("first_name", "Alice")
	record.Set("is_superuser", true)

	user := UserFromRecord(record)

	require.NotNil(t, user)
	assert.Equal(t, "user1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.FirstName)
	assert.True(t, user.IsSuperuser)
}

func TestUserFromRecord_Nil(t *testing.T) {
	assert.Nil(t, UserFromRecord(nil))
}
