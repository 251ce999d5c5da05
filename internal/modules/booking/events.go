// README: Transition events and the sinks they are delivered to.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"citycab/internal/types"
)

type Event struct {
	RequestID string    `json:"request_id"`
	BookingID string    `json:"booking_id,omitempty"`
	RiderID   types.ID  `json:"rider_id"`
	From      State     `json:"from"`
	To        State     `json:"to"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// Sinks delivers to every sink and joins the failures.
type Sinks []EventSink

func (s Sinks) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each transition to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) Publish(ctx context.Context, ev Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "booking transition",
		"request_id", ev.RequestID,
		"booking_id", ev.BookingID,
		"from", ev.From,
		"state", ev.To,
		"detail", ev.Detail,
	)
	return nil
}

const subjectPrefix = "citycab.booking."

// NATSPublisher publishes each event as JSON on citycab.booking.<state>
// with the trace context in the message headers.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func Subject(s State) string { return subjectPrefix + string(s) }

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := eventMsg(ctx, ev)
	if err != nil {
		return err
	}
	return p.nc.PublishMsg(msg)
}

func eventMsg(ctx context.Context, ev Event) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := &nats.Msg{Subject: Subject(ev.To), Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return msg, nil
}

// headerCarrier adapts nats.Msg headers for the otel propagator.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}
