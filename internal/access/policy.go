// Package access holds the pure authorization predicates consulted by the
// request layer. Entities never enforce these themselves; handlers check
// them at the point of dispatch.
package access

import (
	"meetmaster/models"
)

// EventRule is a predicate over an acting user and a target event.
type EventRule func(user *models.User, event *models.Event) bool

// UserRule is a predicate over an acting user and a target user.
type UserRule func(user *models.User, target *models.User) bool

func IsOwner(user *models.User, event *models.Event) bool {
	return user != nil && user.ID == event.OwnerID
}

func IsAttendee(user *models.User, event *models.Event) bool {
	return user != nil && event.HasAttendee(user.ID)
}

func IsSelf(user *models.User, target *models.User) bool {
	return user != nil && user.ID == target.ID
}

func IsSuperuserOrSelf(user *models.User, target *models.User) bool {
	return user != nil && (user.IsSuperuser || IsSelf(user, target))
}

// AnyEvent composes event rules with logical OR, evaluated eagerly.
func AnyEvent(rules ...EventRule) EventRule {
	return func(user *models.User, event *models.Event) bool {
		for _, rule := range rules {
			if rule(user, event) {
				return true
			}
		}
		return false
	}
}

// AnyUser composes user rules with logical OR.
func AnyUser(rules ...UserRule) UserRule {
	return func(user *models.User, target *models.User) bool {
		for _, rule := range rules {
			if rule(user, target) {
				return true
			}
		}
		return false
	}
}
