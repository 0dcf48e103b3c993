package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/admin-audit-api/internal/device"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/observability"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

// AccessRequest carries the HTTP metadata captured on an access record.
type AccessRequest struct {
	Method    string
	Path      string
	FullURL   string
	Query     map[string]string
	Referrer  string
	IP        string
	UserAgent string
}

// Subject identifies the entity a lifecycle event concerns, together
// with its attribute snapshot and, for updates, the pre-change values
// of the fields that changed.
type Subject struct {
	Type       string
	ID         uint
	Attributes map[string]interface{}
	OldValues  map[string]interface{}
}

// ActivityLogger is the audit subsystem's write path. Every entry point
// is fire-and-forget: failures are logged, counted and swallowed so
// audit capture can never break the operation it observes.
type ActivityLogger struct {
	repo       repository.ActivityRepository
	devices    *DeviceDetailService
	throttle   *AccessThrottle
	dispatcher *events.Dispatcher
	logger     zerolog.Logger
}

// NewActivityLogger constructs the recorder. The dispatcher is optional
// and, when present, receives an ActivityRecorded event after each
// successful persist.
func NewActivityLogger(repo repository.ActivityRepository, devices *DeviceDetailService, throttle *AccessThrottle, dispatcher *events.Dispatcher, logger zerolog.Logger) *ActivityLogger {
	return &ActivityLogger{
		repo:       repo,
		devices:    devices,
		throttle:   throttle,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "activity_logger").Logger(),
	}
}

// GetDeviceDetails resolves the device profile for a request through
// the cache. Exposed for the authentication bridges, which attach
// device info to their own records.
func (l *ActivityLogger) GetDeviceDetails(ctx context.Context, meta events.RequestMeta, authenticated bool) device.Profile {
	return l.devices.GetDeviceDetails(ctx, meta.IP, meta.UserAgent, authenticated)
}

// LogAccess records an HTTP access. Authenticated actors are throttled
// to one record per window; anonymous and bot traffic is always logged.
func (l *ActivityLogger) LogAccess(ctx context.Context, actor *events.Actor, req AccessRequest, statusCode int) {
	if actor != nil && !l.throttle.ShouldLog(ctx, actor.ID) {
		observability.AccessThrottled().Inc()
		return
	}

	profile := l.devices.GetDeviceDetails(ctx, req.IP, req.UserAgent, actor != nil)

	visitorType := models.VisitorTypeAnonymous
	switch {
	case profile.IsBot:
		visitorType = models.VisitorTypeBot
	case actor != nil:
		visitorType = models.VisitorTypeAuthenticated
	}

	queryParams := map[string]interface{}{}
	for key, value := range req.Query {
		queryParams[key] = value
	}

	record := models.ActivityRecord{
		Category: models.ActivityCategoryAccess,
		Message:  "Access: " + req.Method + " " + req.Path,
		Properties: datatypes.JSONMap{
			"visitor_type": visitorType,
			"is_bot":       profile.IsBot,
			"url":          req.FullURL,
			"method":       req.Method,
			"path":         req.Path,
			"query_params": queryParams,
			"referrer":     req.Referrer,
			"status_code":  statusCode,
			"device":       profile.Map(),
		},
	}
	if actor != nil {
		id := actor.ID
		record.ActorID = &id
	}

	if !l.persist(ctx, &record) {
		return
	}

	if actor != nil {
		l.throttle.MarkLogged(ctx, actor.ID)
	}
}

// RecordLifecycle records a model lifecycle change. OldValues are only
// attached for updates; device info comes from the originating request
// context when there is one and degrades to an unknown profile for
// system-originated changes.
func (l *ActivityLogger) RecordLifecycle(ctx context.Context, event, message string, subject Subject, actor *events.Actor, meta events.RequestMeta) {
	oldValues := map[string]interface{}{}
	if event == models.ActivityEventUpdated && subject.OldValues != nil {
		oldValues = subject.OldValues
	}

	profile := l.devices.GetDeviceDetails(ctx, meta.IP, meta.UserAgent, actor != nil)

	subjectID := subject.ID
	record := models.ActivityRecord{
		Category:    models.ActivityCategoryDefault,
		Event:       event,
		Message:     message,
		SubjectType: subject.Type,
		SubjectID:   &subjectID,
		Properties: datatypes.JSONMap{
			"attributes": subject.Attributes,
			"old":        oldValues,
			"device":     profile.Map(),
		},
	}
	if actor != nil {
		id := actor.ID
		record.ActorID = &id
	}

	l.persist(ctx, &record)
}

// RecordAuth records an authentication event (login, logout, failed
// login, registration) with device info and any extra properties.
func (l *ActivityLogger) RecordAuth(ctx context.Context, event, message string, actor *events.Actor, subject *Subject, extra map[string]interface{}, meta events.RequestMeta) {
	profile := l.devices.GetDeviceDetails(ctx, meta.IP, meta.UserAgent, actor != nil)

	properties := datatypes.JSONMap{"device": profile.Map()}
	for key, value := range extra {
		properties[key] = value
	}

	record := models.ActivityRecord{
		Category:   models.ActivityCategoryAuth,
		Event:      event,
		Message:    message,
		Properties: properties,
	}
	if actor != nil {
		id := actor.ID
		record.ActorID = &id
	}
	if subject != nil {
		subjectID := subject.ID
		record.SubjectType = subject.Type
		record.SubjectID = &subjectID
	}

	l.persist(ctx, &record)
}

// persist writes the record and swallows any failure, reporting it to
// the error log and the failure counter instead of the caller.
func (l *ActivityLogger) persist(ctx context.Context, record *models.ActivityRecord) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Str("category", record.Category).Msg("audit persistence panicked")
			observability.AuditFailures().WithLabelValues(record.Category).Inc()
			ok = false
		}
	}()

	if err := l.repo.Create(ctx, record); err != nil {
		l.logger.Error().Err(err).Str("category", record.Category).Str("event", record.Event).Msg("failed to persist activity record")
		observability.AuditFailures().WithLabelValues(record.Category).Inc()
		return false
	}

	observability.AuditRecords().WithLabelValues(record.Category, record.Event).Inc()

	if l.dispatcher != nil {
		l.dispatcher.Publish(ctx, events.ActivityRecorded{Record: *record})
	}
	return true
}
