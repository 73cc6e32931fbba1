package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/schedassist/libs/config"
	"github.com/md-rashed-zaman/schedassist/libs/db"
	"github.com/md-rashed-zaman/schedassist/libs/httpx"
	"github.com/md-rashed-zaman/schedassist/libs/kafkax"
	otelx "github.com/md-rashed-zaman/schedassist/libs/otel"
	"github.com/md-rashed-zaman/schedassist/libs/runtime"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/booking"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/calendar"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/events"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/handlers"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/policy"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/timeparse"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8080")
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

	loc, err := time.LoadLocation(config.String("BUSINESS_TIMEZONE", "Europe/Berlin"))
	if err != nil {
		logger.Error("invalid BUSINESS_TIMEZONE", "err", err)
		panic(err)
	}
	pol, err := policyFromEnv(loc)
	if err != nil {
		logger.Error("invalid business policy configuration", "err", err)
		panic(err)
	}

	var readyChecks []runtime.ReadyCheck
	var cal calendar.Calendar
	provider := strings.ToLower(config.String("CALENDAR_PROVIDER", "postgres"))
	switch provider {
	case "google":
		cal, err = calendar.NewGoogleCalendar(ctx, calendar.GoogleConfig{
			CredentialsPath: config.String("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
			TokenPath:       config.String("GOOGLE_TOKEN_PATH", "token.json"),
			CalendarID:      config.String("GOOGLE_CALENDAR_ID", "primary"),
			Location:        loc,
		})
		if err != nil {
			logger.Error("google calendar init failed", "err", err)
			panic(err)
		}
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			panic(err)
		}
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		cal = calendar.NewPostgresCalendar(pool, loc)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	default:
		logger.Error("unknown CALENDAR_PROVIDER", "provider", provider)
		panic("unknown CALENDAR_PROVIDER: " + provider)
	}

	engine := booking.NewEngine(booking.Config{
		Policy:   pol,
		Calendar: cal,
		Rules: timeparse.Rules{
			NextMeansFollowingWeek: config.Bool("NEXT_MEANS_FOLLOWING_WEEK", true),
		},
		Logger:         logger,
		MaxSuggestions: config.Int("MAX_SUGGESTIONS", 3),
	})

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(events.PublisherConfig{Brokers: brokers, Logger: logger})
	defer func() { _ = publisher.Close() }()
	if brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	bookingHandler := handlers.NewBookingHandler(engine, publisher, logger)

	var rateLimitMW httpx.Middleware
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/v1/bookings", bookingHandler.Create)
	mux.HandleFunc("/api/v1/slots", bookingHandler.Slots)
	mux.HandleFunc("/api/v1/validate", bookingHandler.Validate)

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 10*time.Second)),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, "scheduling")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "calendar_provider", provider, "timezone", loc.String())
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

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func policyFromEnv(loc *time.Location) (policy.BusinessPolicy, error) {
	pol := policy.Default(loc)

	weekdays, err := policy.ParseWeekdays(config.String("BUSINESS_DAYS", "Mon,Tue,Wed,Thu,Fri"))
	if err != nil {
		return pol, err
	}
	pol.Weekdays = weekdays

	open, err := policy.ParseClock(config.String("BUSINESS_OPEN", "09:00"))
	if err != nil {
		return pol, err
	}
	closeAt, err := policy.ParseClock(config.String("BUSINESS_CLOSE", "17:00"))
	if err != nil {
		return pol, err
	}
	pol.OpenMinute = open
	pol.CloseMinute = closeAt

	pol.DefaultDuration = time.Duration(config.Int("APPOINTMENT_DURATION_MINUTES", 60)) * time.Minute
	pol.LookAheadDays = config.Int("LOOKAHEAD_DAYS", 14)
	return pol, nil
}
