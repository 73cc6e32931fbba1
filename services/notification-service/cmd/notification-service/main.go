package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/md-rashed-zaman/schedassist/libs/config"
	"github.com/md-rashed-zaman/schedassist/libs/httpx"
	"github.com/md-rashed-zaman/schedassist/libs/kafkax"
	otelx "github.com/md-rashed-zaman/schedassist/libs/otel"
	"github.com/md-rashed-zaman/schedassist/libs/runtime"
	"github.com/md-rashed-zaman/schedassist/services/notification-service/internal/consumer"
	"github.com/md-rashed-zaman/schedassist/services/notification-service/internal/email"
)

type bookedPayload struct {
	BookingID   string    `json:"booking_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	Summary     string    `json:"summary"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Timezone    string    `json:"timezone"`
	Notes       string    `json:"notes"`
	Traceparent string    `json:"traceparent"`
	Tracestate  string    `json:"tracestate"`
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	sender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", ""),
	)
	office := config.String("OFFICE_ADDRESS", "")

	brokers := config.String("KAFKA_BROKERS", "")
	eventConsumer := consumer.New(logger, consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "scheduling.appointment.booked.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload bookedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.ClientEmail == "" {
			logger.Info("booking has no client email, skipping confirmation", "booking_id", payload.BookingID)
			return nil
		}

		// The payload carries the booking's trace context redundantly with the
		// Kafka headers; restoring from it links the email span even when an
		// intermediary dropped the headers.
		ctx = otelx.ContextWithTraceContext(ctx, payload.Traceparent, payload.Tracestate)
		_, span := otel.Tracer("notification").Start(ctx, "email.confirmation")
		defer span.End()

		loc := time.UTC
		if payload.Timezone != "" {
			if l, err := time.LoadLocation(payload.Timezone); err == nil {
				loc = l
			}
		}
		conf := email.Confirmation{
			ClientName: payload.ClientName,
			Start:      payload.StartTime.In(loc),
			End:        payload.EndTime.In(loc),
			Office:     office,
			Notes:      payload.Notes,
		}
		if err := sender.Send(payload.ClientEmail, conf.Subject(), conf.Body()); err != nil {
			logger.Error("confirmation email failed", "booking_id", payload.BookingID, "err", err)
			span.RecordError(err)
			return err
		}
		logger.Info("confirmation email sent", "booking_id", payload.BookingID, "to", payload.ClientEmail)
		return nil
	})
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
