package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestEvent(method, target, pathParam, pathValue string) *core.RequestEvent {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue(pathParam, pathValue)

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = httptest.NewRecorder()
	return e
}

func TestEventHandler_LoadEvent_NotFound(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	events := core.NewBaseCollection("events")
	events.Fields.Add(&core.TextField{Name: "title"})
	require.NoError(t, app.Save(events))

	h := NewEventHandler(app, nil, nil)

	_, err = h.loadEvent(newRequestEvent("GET", "/api/v1/events/missing", "eventId", "missing"))
	require.Error(t, err)

	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestEventHandler_LoadEvent_MissingID(t *testing.T) {
	h := NewEventHandler(nil, nil, nil)

	_, err := h.loadEvent(newRequestEvent("GET", "/api/v1/events/", "eventId", ""))
	require.Error(t, err)

	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestUserHandler_LoadUser_NotFound(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	h := NewUserHandler(app)

	_, err = h.loadUser(newRequestEvent("GET", "/api/v1/users/missing", "userId", "missing"))
	require.Error(t, err)

	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
