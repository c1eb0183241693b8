// Command server is the entry point for the core banking service: it loads
// configuration, establishes the database pool, wires every repository,
// domain-event subscriber, and scheduled job, then starts the outbox relay,
// the scheduler, and the HTTP server side by side, shutting all three down
// together on SIGINT/SIGTERM: godotenv, then config, then the pgxpool,
// then repositories, background goroutines, the HTTP server, and finally
// graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/transfa/corebank/internal/config"
	"github.com/transfa/corebank/internal/dispatcher"
	"github.com/transfa/corebank/internal/emailsvc"
	"github.com/transfa/corebank/internal/events"
	"github.com/transfa/corebank/internal/eventsink"
	"github.com/transfa/corebank/internal/httpapi"
	"github.com/transfa/corebank/internal/jobs"
	"github.com/transfa/corebank/internal/outbox"
	"github.com/transfa/corebank/internal/pipeline"
	"github.com/transfa/corebank/internal/scheduler"
	"github.com/transfa/corebank/internal/statement"
	"github.com/transfa/corebank/internal/store/postgres"
	"github.com/transfa/corebank/internal/uow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := newLogger(cfg)

	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("cannot parse database url: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("cannot connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info("database connection established")

	customers := postgres.NewCustomerRepository(pool)
	accounts := postgres.NewAccountRepository(pool)
	transactions := postgres.NewTransactionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	schedulerRepo := postgres.NewSchedulerRepository(pool)

	sink := newEventSink(cfg, logger)
	defer sink.Close()
	email := emailsvc.NewRabbitMQService(sink)
	renderer := statement.NewTextRenderer()

	d := dispatcher.New(logger)
	registerDomainEventSubscribers(d, email, logger)

	relay := outbox.NewRelay(outboxRepo, d, logger).
		WithPollInterval(time.Duration(cfg.OutboxPollIntervalSeconds) * time.Second).
		WithBatchSize(cfg.OutboxBatchSize)

	pipelineUoWFactory := func() pipeline.UnitOfWork { return uow.New(pool, logger) }
	jobsUoWFactory := func() jobs.UnitOfWork { return uow.New(pool, logger) }

	commands := pipeline.NewCommands(customers, accounts, pipelineUoWFactory, logger)
	queries := pipeline.NewQueries(customers, accounts, transactions)

	validators := pipeline.NewValidationRegistry()
	pipeline.RegisterDefaultValidators(validators)

	execute := pipeline.Chain(
		pipeline.RootHandler(commands, queries),
		pipeline.LoggingMiddleware(logger),
		pipeline.ValidationMiddleware(validators),
		pipeline.DomainEventsMiddleware(d, logger),
	)

	jobRunner := jobs.New(accounts, customers, transactions, email, renderer, jobsUoWFactory, logger)

	lease := newSchedulerLease(cfg, logger)

	schedulerManager := scheduler.NewManager(
		schedulerRepo, lease, logger, cfg.SchedulerInstanceID,
		scheduler.WithWorkerCount(cfg.SchedulerWorkerCount),
		scheduler.WithPollInterval(time.Duration(cfg.SchedulerPollIntervalSeconds)*time.Second),
		scheduler.WithInvisibilityTimeout(time.Duration(cfg.SchedulerInvisibilityTimeoutSecs)*time.Second),
	)
	schedulerManager.RegisterHandler("DailyStatementGeneration", jobRunner.DailyStatementGeneration)
	schedulerManager.RegisterHandler("MonthlyInterestCalculation", jobRunner.MonthlyInterestCalculation)
	schedulerManager.RegisterHandler("AccountCleanup", jobRunner.AccountMaintenance)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	for recurringID, cronExpr := range cfg.ScheduledJobs() {
		handler := recurringIDToHandler(recurringID)
		if err := schedulerManager.Schedule(bootCtx, recurringID, handler, cronExpr, nil, scheduler.LaneDefault); err != nil {
			logger.Warn("failed to register recurring schedule", slog.String("recurring_id", recurringID), slog.Any("error", err))
		}
	}
	bootCancel()

	handlers := httpapi.NewHandlers(commands, queries, execute)
	router := httpapi.NewRouter(cfg.JWTSigningSecret, handlers)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	go relay.Run(runCtx)
	go schedulerManager.Start(runCtx)

	go func() {
		logger.Info("starting http server", slog.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	runCancel()
	schedulerManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
}

// recurringIDToHandler maps a recurring schedule's id to the handler name it
// was registered under. The two currently coincide; kept as a separate
// function so the mapping can diverge without touching the registration
// loop above.
func recurringIDToHandler(recurringID string) string {
	return recurringID
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// newEventSink connects to RabbitMQ, degrading to a logging FallbackSink if
// the broker is unreachable at boot so the service can still start.
func newEventSink(cfg *config.Config, logger *slog.Logger) eventsink.Sink {
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		logger.Warn("rabbitmq url missing; notifications disabled", slog.String("env", "RABBITMQ_URL"))
		return eventsink.NewFallbackSink(logger)
	}
	sink, err := eventsink.NewRabbitMQSink(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("rabbitmq connect failed; notifications disabled", slog.Any("error", err))
		return eventsink.NewFallbackSink(logger)
	}
	logger.Info("rabbitmq connected")
	return sink
}

// newSchedulerLease connects to Redis for distributed polling coordination,
// degrading to a nil lease (every replica polls independently, safe but
// less efficient) if Redis is unreachable or unconfigured.
func newSchedulerLease(cfg *config.Config, logger *slog.Logger) *scheduler.Lease {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Warn("redis url missing; scheduler lease disabled", slog.String("env", "REDIS_URL"))
		return nil
	}
	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis url parse failed; scheduler lease disabled", slog.Any("error", err))
		return nil
	}
	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis ping failed; scheduler lease disabled", slog.Any("error", err))
		client.Close()
		return nil
	}
	logger.Info("redis connected")
	return scheduler.NewLease(client, cfg.RedisLeasePrefix)
}

// registerDomainEventSubscribers wires the real-time side effects that run
// synchronously alongside the outbox relay's own asynchronous delivery of
// the same events: an insufficient-funds event pages whoever monitors the
// critical alert channel. Both delivery paths hand subscribers the same
// value shape — the command handler's own dispatch carries a value straight
// off the aggregate, and events.Decode always dereferences its
// factory-produced pointer back to a value before returning it to the
// relay — so no pointer form needs handling here.
func registerDomainEventSubscribers(d *dispatcher.Dispatcher, email emailsvc.Service, logger *slog.Logger) {
	d.Subscribe(events.InsufficientFunds{}.TypeTag(), func(ctx context.Context, event events.DomainEvent) error {
		ev, ok := event.(events.InsufficientFunds)
		if !ok {
			return nil
		}
		return email.SendCriticalAlert(ctx, "insufficient funds", fmt.Sprintf("account %s rejected a %s of %d", ev.AccountNumber, ev.Operation, ev.RequestedAmount.AmountMinor), map[string]any{
			"account_number":   ev.AccountNumber,
			"requested_amount": ev.RequestedAmount.AmountMinor,
			"current_balance":  ev.CurrentBalance.AmountMinor,
			"operation":        ev.Operation,
		})
	})
}
