package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmaster/internal/status"
)

func testEvent(s EventStatus) *Event {
	return &Event{
		ID:          "evt1",
		Title:       "Team Meetup",
		Description: "Quarterly sync",
		Date:        time.Now().Add(48 * time.Hour),
		Location:    "Berlin",
		Status:      s,
		OwnerID:     "user1",
	}
}

func strPtr(s string) *string              { return &s }
func statusPtr(s EventStatus) *EventStatus { return &s }
func timePtr(t time.Time) *time.Time       { return &t }

func TestNewEvent_FutureDate(t *testing.T) {
	now := time.Now()
	event, err := NewEvent("user1", EventDraft{
		Title:    "Team Meetup",
		Date:     now.Add(24 * time.Hour),
		Location: "Berlin",
	}, now)

	require.NoError(t, err)
	assert.Equal(t, StatusIncoming, event.Status)
	assert.Equal(t, "user1", event.OwnerID)
}

func TestNewEvent_PastDateRejected(t *testing.T) {
	now := time.Now()

	_, err := NewEvent("user1", EventDraft{Title: "Old", Date: now.Add(-time.Hour)}, now)
	require.Error(t, err)
	assert.True(t, status.IsValidation(err))

	// Exactly "now" is not strictly in the future either.
	_, err = NewEvent("user1", EventDraft{Title: "Now", Date: now}, now)
	assert.True(t, status.IsValidation(err))
}

func TestApplyUpdate_CancelViaStatus(t *testing.T) {
	event := testEvent(StatusIncoming)

	changed, err := event.ApplyUpdate(EventChanges{Status: statusPtr(StatusCanceled)}, time.Now())

	require.NoError(t, err)
	assert.True(t, changed.Status)
	assert.Equal(t, StatusCanceled, event.Status)
}

func TestApplyUpdate_StatusOnlyAcceptsCanceled(t *testing.T) {
	for _, next := range []EventStatus{StatusIncoming, StatusFinished} {
		event := testEvent(StatusIncoming)
		_, err := event.ApplyUpdate(EventChanges{Status: statusPtr(next)}, time.Now())
		assert.True(t, status.IsValidation(err), "status %s should be rejected", next)
		assert.Equal(t, StatusIncoming, event.Status)
	}
}

func TestApplyUpdate_TerminalStatesRejectTransitions(t *testing.T) {
	for _, current := range []EventStatus{StatusFinished, StatusCanceled} {
		event := testEvent(current)
		_, err := event.ApplyUpdate(EventChanges{Status: statusPtr(StatusIncoming)}, time.Now())
		assert.True(t, status.IsValidation(err))
		assert.Equal(t, current, event.Status)
	}

	// Even re-submitting canceled is rejected once terminal; idempotent
	// re-cancellation goes through Cancel, not a status update.
	event := testEvent(StatusCanceled)
	_, err := event.ApplyUpdate(EventChanges{Status: statusPtr(StatusCanceled)}, time.Now())
	assert.True(t, status.IsValidation(err))
}

func TestApplyUpdate_DateChangeDetection(t *testing.T) {
	now := time.Now()
	event := testEvent(StatusIncoming)

	newDate := now.Add(72 * time.Hour)
	changed, err := event.ApplyUpdate(EventChanges{Date: timePtr(newDate)}, now)
	require.NoError(t, err)
	assert.True(t, changed.Date)
	assert.False(t, changed.Status)

	// Submitting the same date again is presence without change.
	changed, err = event.ApplyUpdate(EventChanges{Date: timePtr(newDate)}, now)
	require.NoError(t, err)
	assert.False(t, changed.Date)
}

func TestApplyUpdate_PastDateRejected(t *testing.T) {
	now := time.Now()
	event := testEvent(StatusIncoming)
	original := event.Date

	_, err := event.ApplyUpdate(EventChanges{Date: timePtr(now.Add(-time.Minute))}, now)
	assert.True(t, status.IsValidation(err))
	assert.Equal(t, original, event.Date)
}

func TestApplyUpdate_PlainFields(t *testing.T) {
	event := testEvent(StatusIncoming)

	changed, err := event.ApplyUpdate(EventChanges{
		Title:    strPtr("Renamed"),
		Location: strPtr("Hamburg"),
	}, time.Now())

	require.NoError(t, err)
	assert.False(t, changed.Status)
	assert.False(t, changed.Date)
	assert.Equal(t, "Renamed", event.Title)
	assert.Equal(t, "Hamburg", event.Location)
}

func TestCancel_Idempotent(t *testing.T) {
	event := testEvent(StatusIncoming)

	changed, err := event.Cancel()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusCanceled, event.Status)

	changed, err = event.Cancel()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusCanceled, event.Status)
}

func TestCancel_FinishedRejected(t *testing.T) {
	event := testEvent(StatusFinished)

	changed, err := event.Cancel()
	assert.False(t, changed)
	assert.True(t, status.IsValidation(err))
	assert.Equal(t, StatusFinished, event.Status)
}

func TestEventStatus_Terminal(t *testing.T) {
	assert.False(t, StatusIncoming.Terminal())
	assert.True(t, StatusFinished.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestHasAttendee(t *testing.T) {
	event := testEvent(StatusIncoming)
	event.AttendeeIDs = []string{"user2", "user3"}

	assert.True(t, event.HasAttendee("user2"))
	assert.False(t, event.HasAttendee("user1"))
}

func TestViewFor(t *testing.T) {
	superuser := &User{ID: "admin1", IsSuperuser: true}
	alice := &User{ID: "alice"}
	bob := &User{ID: "bob"}

	assert.Equal(t, ViewDetailed, ViewFor(superuser, alice))
	assert.Equal(t, ViewSelf, ViewFor(alice, alice))
	assert.Equal(t, ViewPublic, ViewFor(bob, alice))
	assert.Equal(t, ViewPublic, ViewFor(nil, alice))
	// Superusers looking at themselves still get the detailed set.
	assert.Equal(t, ViewDetailed, ViewFor(superuser, superuser))
}

func TestUserSerialize_HidesFieldsByView(t *testing.T) {
	user := &User{
		ID:          "alice",
		Username:    "alice",
		Email:       "alice@example.com",
		IsSuperuser: true,
	}

	public, ok := user.Serialize(ViewPublic).(PublicUser)
	require.True(t, ok)
	assert.Equal(t, "alice", public.Username)

	self, ok := user.Serialize(ViewSelf).(SelfUser)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", self.Email)

	detailed, ok := user.Serialize(ViewDetailed).(DetailedUser)
	require.True(t, ok)
	assert.True(t, detailed.IsSuperuser)
}
