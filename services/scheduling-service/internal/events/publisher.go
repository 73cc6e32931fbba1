package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/schedassist/libs/kafkax"
	otelx "github.com/md-rashed-zaman/schedassist/libs/otel"
)

// Publisher writes booked events to Kafka. Publishing happens after the
// calendar write committed, so a lost message costs a confirmation email, not
// a booking; failures are logged and never surfaced to the client.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

type PublisherConfig struct {
	Brokers string
	Logger  *slog.Logger
}

// NewPublisher returns a disabled publisher (Publish is a no-op) when no
// brokers are configured, mirroring how optional collaborators degrade
// elsewhere in the stack.
func NewPublisher(cfg PublisherConfig) *Publisher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		cfg.Logger.Warn("event publisher disabled (no kafka brokers configured)")
		return &Publisher{logger: cfg.Logger}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicAppointmentBooked,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 5 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (p *Publisher) PublishBooked(ctx context.Context, ev AppointmentBooked) {
	if p.writer == nil {
		return
	}
	ev.Traceparent, ev.Tracestate = otelx.TraceContextStrings(ctx)
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshal booked event", "err", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(TopicAppointmentBooked)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish booked event failed", "booking_id", ev.BookingID, "err", err)
	}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
