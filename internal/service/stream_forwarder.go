package service

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/admin-audit-api/internal/events"
)

// StreamForwarder relays persisted activity records onto a NATS subject
// so external consumers (SIEM shippers, alerting) can follow the audit
// trail without querying the store. It is a best-effort secondary
// subscriber: publish failures are logged and dropped.
type StreamForwarder struct {
	conn    *nats.Conn
	subject string
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewStreamForwarder constructs the forwarder. A nil connection or
// empty subject yields a no-op forwarder.
func NewStreamForwarder(conn *nats.Conn, subject string, logger zerolog.Logger) *StreamForwarder {
	return &StreamForwarder{
		conn:    conn,
		subject: subject,
		tracer:  otel.Tracer("github.com/noah-isme/admin-audit-api/internal/service/stream_forwarder"),
		logger:  logger.With().Str("component", "stream_forwarder").Logger(),
	}
}

// Register subscribes the forwarder to recorded activity events.
func (f *StreamForwarder) Register(dispatcher *events.Dispatcher) {
	if f.conn == nil || f.subject == "" {
		return
	}
	dispatcher.Subscribe(events.TopicActivityRecorded, f.onRecorded)
}

func (f *StreamForwarder) onRecorded(ctx context.Context, event events.Event) {
	recorded, ok := event.(events.ActivityRecorded)
	if !ok {
		return
	}

	_, span := f.tracer.Start(ctx, "audit.stream.publish", trace.WithAttributes(
		attribute.String("activity.category", recorded.Record.Category),
		attribute.String("activity.event", recorded.Record.Event),
	))
	defer span.End()

	payload, err := json.Marshal(recorded.Record)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to encode activity record for stream")
		return
	}

	if err := f.conn.Publish(f.subject, payload); err != nil {
		f.logger.Warn().Err(err).Str("subject", f.subject).Msg("failed to publish activity record")
	}
}
