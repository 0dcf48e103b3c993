package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/models"
)

const subjectTypeUser = "User"

// AuditSubscriber bridges domain events into the activity recorder. It
// is one subscriber among potentially several on the dispatcher; the
// recorder itself never knows where events come from.
type AuditSubscriber struct {
	recorder  *ActivityLogger
	formatter *MessageFormatter
	logger    zerolog.Logger
}

// NewAuditSubscriber constructs the bridge.
func NewAuditSubscriber(recorder *ActivityLogger, formatter *MessageFormatter, logger zerolog.Logger) *AuditSubscriber {
	return &AuditSubscriber{
		recorder:  recorder,
		formatter: formatter,
		logger:    logger.With().Str("component", "audit_subscriber").Logger(),
	}
}

// Register subscribes the bridge to every audited topic.
func (s *AuditSubscriber) Register(dispatcher *events.Dispatcher) {
	for _, topic := range []string{
		events.TopicUserCreated,
		events.TopicUserUpdated,
		events.TopicUserDeleted,
		events.TopicUserRestored,
		events.TopicUserForceDeleted,
	} {
		dispatcher.Subscribe(topic, s.onUserLifecycle)
	}
	dispatcher.Subscribe(events.TopicLoginSucceeded, s.onLogin)
	dispatcher.Subscribe(events.TopicLoginFailed, s.onLoginFailed)
	dispatcher.Subscribe(events.TopicLoggedOut, s.onLogout)
	dispatcher.Subscribe(events.TopicUserRegistered, s.onRegistered)
}

func (s *AuditSubscriber) onUserLifecycle(ctx context.Context, event events.Event) {
	lifecycle, ok := event.(events.UserLifecycle)
	if !ok {
		return
	}

	// A restore surfaces as an update whose only change is the
	// soft-delete marker clearing; the restored bridge already records
	// that transition, so the update is suppressed to avoid a double
	// entry.
	if lifecycle.Kind == models.ActivityEventUpdated && isRestoreOnlyUpdate(lifecycle) {
		return
	}

	message := s.formatter.FormatLifecycle(lifecycle.Kind, lifecycle.User.Name, lifecycle.User.Gender)
	subject := Subject{
		Type:       subjectTypeUser,
		ID:         lifecycle.User.ID,
		Attributes: lifecycle.Attributes,
		OldValues:  lifecycle.OldValues,
	}
	s.recorder.RecordLifecycle(ctx, lifecycle.Kind, message, subject, lifecycle.Actor, lifecycle.Request)
}

func isRestoreOnlyUpdate(lifecycle events.UserLifecycle) bool {
	if len(lifecycle.ChangedFields) != 1 || lifecycle.ChangedFields[0] != "deleted_at" {
		return false
	}
	return !lifecycle.User.DeletedAt.Valid
}

func (s *AuditSubscriber) onLogin(ctx context.Context, event events.Event) {
	login, ok := event.(events.LoginSucceeded)
	if !ok {
		return
	}
	actor := login.Actor
	s.recorder.RecordAuth(ctx, models.ActivityEventLogin, "Login exitoso: "+actor.Name, &actor, nil,
		map[string]interface{}{"guard": login.Guard}, login.Request)
}

func (s *AuditSubscriber) onLoginFailed(ctx context.Context, event events.Event) {
	failed, ok := event.(events.LoginFailed)
	if !ok {
		return
	}
	s.recorder.RecordAuth(ctx, models.ActivityEventLoginFailed, "Intento de login fallido: "+failed.Email, nil, nil,
		map[string]interface{}{"guard": failed.Guard, "email": failed.Email}, failed.Request)
}

func (s *AuditSubscriber) onLogout(ctx context.Context, event events.Event) {
	logout, ok := event.(events.LoggedOut)
	if !ok {
		return
	}
	actor := logout.Actor
	s.recorder.RecordAuth(ctx, models.ActivityEventLogout, "Logout exitoso: "+actor.Name, &actor, nil,
		map[string]interface{}{"guard": logout.Guard}, logout.Request)
}

func (s *AuditSubscriber) onRegistered(ctx context.Context, event events.Event) {
	registered, ok := event.(events.UserRegistered)
	if !ok {
		return
	}
	user := registered.User
	actor := events.Actor{ID: user.ID, Name: user.Name, Email: user.Email}
	subject := &Subject{Type: subjectTypeUser, ID: user.ID}
	s.recorder.RecordAuth(ctx, models.ActivityEventRegistered,
		"Nuevo registro: "+user.Name+" ("+user.Email+")", &actor, subject, nil, registered.Request)
}
