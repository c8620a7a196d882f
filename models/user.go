package models

import (
	"time"
)

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Avatar      string    `json:"avatar"`
	IsSuperuser bool      `json:"is_superuser"`
	Created     time.Time `json:"created"`
}

// UserView tags which field set of a user a caller may see.
type UserView string

const (
	ViewPublic   UserView = "public"
	ViewSelf     UserView = "self"
	ViewDetailed UserView = "detailed"
)

// ViewFor selects the field set actor gets for target: superusers see
// everything, users see their own account, everyone else the public set.
func ViewFor(actor, target *User) UserView {
	switch {
	case actor != nil && actor.IsSuperuser:
		return ViewDetailed
	case actor != nil && actor.ID == target.ID:
		return ViewSelf
	default:
		return ViewPublic
	}
}

type PublicUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type SelfUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Avatar    string    `json:"avatar"`
	Created   time.Time `json:"created"`
}

type DetailedUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Avatar      string    `json:"avatar"`
	IsSuperuser bool      `json:"is_superuser"`
	Created     time.Time `json:"created"`
}

// Serialize renders the user under the given view. The password hash is
// never part of any view.
func (u *User) Serialize(view UserView) any {
	switch view {
	case ViewDetailed:
		return DetailedUser{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Avatar:      u.Avatar,
			IsSuperuser: u.IsSuperuser,
			Created:     u.Created,
		}
	case ViewSelf:
		return SelfUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Avatar:    u.Avatar,
			Created:   u.Created,
		}
	default:
		return PublicUser{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Avatar:    u.Avatar,
		}
	}
}
