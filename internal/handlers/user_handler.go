package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"meetmaster/internal/access"
	"meetmaster/internal/services"
	"meetmaster/internal/status"
	"meetmaster/models"
)

type UserHandler struct {
	app core.App
}

func NewUserHandler(app core.App) *UserHandler {
	return &UserHandler{app: app}
}

// List - Superuser-only user listing, public field set
func (h *UserHandler) List(e *core.RequestEvent) error {
	actor := services.UserFromRecord(e.Auth)
	if actor == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if !actor.IsSuperuser {
		return apis.NewForbiddenError("Superuser access required", nil)
	}

	records := []*core.Record{}
	err := h.app.RecordQuery("users").
		OrderBy("created ASC").
		All(&records)
	if err != nil {
		return apis.NewBadRequestError("Failed to list users", err)
	}

	result := make([]any, 0, len(records))
	for _, record := range records {
		user := services.UserFromRecord(record)
		result = append(result, user.Serialize(models.ViewPublic))
	}
	return e.JSON(http.StatusOK, result)
}

// Get - Role-conditional detail: detailed for superusers, self view for
// the account owner, public otherwise
func (h *UserHandler) Get(e *core.RequestEvent) error {
	actor := services.UserFromRecord(e.Auth)
	if actor == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.loadUser(e)
	if err != nil {
		return err
	}

	target := services.UserFromRecord(record)
	return e.JSON(http.StatusOK, target.Serialize(models.ViewFor(actor, target)))
}

// Create - Open registration
func (h *UserHandler) Create(e *core.RequestEvent) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apis.NewBadRequestError("Username, email and password are required", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("users")
	if err != nil {
		return apis.NewBadRequestError("Failed to create user", err)
	}

	record := core.NewRecord(collection)
	record.Set("username", req.Username)
	record.Set("email", req.Email)
	record.Set("password", req.Password)
	record.Set("first_name", req.FirstName)
	record.Set("last_name", req.LastName)

	// Uniqueness of username and email is enforced by the collection;
	// violations surface here as a validation error.
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create user", err)
	}

	user := services.UserFromRecord(record)
	return e.JSON(http.StatusCreated, user.Serialize(models.ViewSelf))
}

// Update - Superuser-or-self profile edits
func (h *UserHandler) Update(e *core.RequestEvent) error {
	actor := services.UserFromRecord(e.Auth)
	if actor == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.loadUser(e)
	if err != nil {
		return err
	}

	target := services.UserFromRecord(record)
	if !access.IsSuperuserOrSelf(actor, target) {
		return apis.NewForbiddenError("Not authorized to update this user", nil)
	}

	var req struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Email != nil {
		record.Set("email", *req.Email)
	}
	if req.FirstName != nil {
		record.Set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		record.Set("last_name", *req.LastName)
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update user", err)
	}

	updated := services.UserFromRecord(record)
	return e.JSON(http.StatusOK, updated.Serialize(models.ViewFor(actor, updated)))
}

// Delete - Superuser-or-self account removal
func (h *UserHandler) Delete(e *core.RequestEvent) error {
	actor := services.UserFromRecord(e.Auth)
	if actor == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.loadUser(e)
	if err != nil {
		return err
	}

	if !access.IsSuperuserOrSelf(actor, services.UserFromRecord(record)) {
		return apis.NewForbiddenError("Not authorized to delete this user", nil)
	}

	if err := h.app.Delete(record); err != nil {
		return apis.NewBadRequestError("Failed to delete user", err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *UserHandler) loadUser(e *core.RequestEvent) (*core.Record, error) {
	id := e.Request.PathValue("userId")
	if id == "" {
		return nil, apis.NewBadRequestError("User ID is required", nil)
	}
	record, err := h.app.FindRecordById("users", id)
	if err != nil {
		return nil, apis.NewNotFoundError("User not found", errors.Join(status.ErrUserNotFound, err))
	}
	return record, nil
}
