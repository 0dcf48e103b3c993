package events

import "github.com/noah-isme/admin-audit-api/internal/models"

// Topics routed through the dispatcher.
const (
	TopicUserCreated      = "user.created"
	TopicUserUpdated      = "user.updated"
	TopicUserDeleted      = "user.deleted"
	TopicUserRestored     = "user.restored"
	TopicUserForceDeleted = "user.force_deleted"
	TopicLoginSucceeded   = "auth.login"
	TopicLoginFailed      = "auth.login_failed"
	TopicLoggedOut        = "auth.logout"
	TopicUserRegistered   = "auth.registered"
	TopicActivityRecorded = "activity.recorded"
)

// Actor identifies who caused an event. A nil *Actor represents a
// system-originated or anonymous action.
type Actor struct {
	ID    uint
	Name  string
	Email string
}

// RequestMeta carries the HTTP context an event originated from. It is
// passed explicitly instead of being read from a request-scoped global;
// zero values mean the event was not HTTP-triggered.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Event is the payload routed by the dispatcher.
type Event interface {
	Topic() string
}

// UserLifecycle describes a create/update/delete/restore/force-delete
// transition of a user record. Attributes is the full post-change
// snapshot; ChangedFields and OldValues are only populated for updates.
type UserLifecycle struct {
	Kind          string
	User          models.User
	Attributes    map[string]interface{}
	ChangedFields []string
	OldValues     map[string]interface{}
	Actor         *Actor
	Request       RequestMeta
}

// Topic implements Event.
func (e UserLifecycle) Topic() string {
	switch e.Kind {
	case models.ActivityEventCreated:
		return TopicUserCreated
	case models.ActivityEventUpdated:
		return TopicUserUpdated
	case models.ActivityEventDeleted:
		return TopicUserDeleted
	case models.ActivityEventRestored:
		return TopicUserRestored
	case models.ActivityEventForceDeleted:
		return TopicUserForceDeleted
	}
	return "user." + e.Kind
}

// LoginSucceeded is published after a successful authentication.
type LoginSucceeded struct {
	Actor   Actor
	Guard   string
	Request RequestMeta
}

// Topic implements Event.
func (LoginSucceeded) Topic() string { return TopicLoginSucceeded }

// LoginFailed is published when credential verification fails. Only the
// attempted email is carried, never the password.
type LoginFailed struct {
	Email   string
	Guard   string
	Request RequestMeta
}

// Topic implements Event.
func (LoginFailed) Topic() string { return TopicLoginFailed }

// LoggedOut is published when an authenticated session ends.
type LoggedOut struct {
	Actor   Actor
	Guard   string
	Request RequestMeta
}

// Topic implements Event.
func (LoggedOut) Topic() string { return TopicLoggedOut }

// UserRegistered is published after self-service registration.
type UserRegistered struct {
	User    models.User
	Request RequestMeta
}

// Topic implements Event.
func (UserRegistered) Topic() string { return TopicUserRegistered }

// ActivityRecorded is published after an audit record has been
// persisted, so secondary consumers (metrics, stream forwarding) can
// react without touching the write path.
type ActivityRecorded struct {
	Record models.ActivityRecord
}

// Topic implements Event.
func (ActivityRecorded) Topic() string { return TopicActivityRecorded }
