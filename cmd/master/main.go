package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mix-lab/contract"
	"mix-lab/domain"
	"mix-lab/domain/event"
	"mix-lab/faceit"
	"mix-lab/internal"
	"mix-lab/observability"
	"mix-lab/repositories"
	"mix-lab/runtime"
	"mix-lab/runtime/workers"
	"mix-lab/services"
	"mix-lab/sink"
	"mix-lab/ui"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// consoleLocation is the surface local sessions attach to. The real
// chat gateway supplies proper guild and channel ids over the same
// service layer.
var consoleLocation = domain.Location{GuildID: "local", ChannelID: "console", MessageID: "stdout"}

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Master terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the process lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Stores & external collaborators
	sessionStore := repositories.NewSessionRepository(db, logger)
	linkStore := repositories.NewLinkRepository(db)
	journal := repositories.NewEventJournal(db, logger)
	ratings := faceit.NewClient(config.FaceitBaseURL, config.FaceitApiKey, config.FaceitRate, config.FaceitBurst, logger)
	renderer := ui.NewConsoleRenderer(os.Stdout, true)

	// 4. Event pipeline
	domainChan := make(chan event.Event, config.BufferSize)
	telemetryChan := make(chan event.Event, config.BufferSize)
	counter := event.NewCounter()
	tracker := observability.NewTracker(logger, counter)

	manager := runtime.NewManager(sessionStore, linkStore, ratings, renderer, domainChan, logger, runtime.Settings{
		Capacity:      config.RequiredPlayers,
		SessionTTL:    config.SessionTTL,
		LookupTimeout: config.LookupTimeout,
		RenderTimeout: config.RenderTimeout,
	})

	// 5. Recovery before anything else touches the store
	report, err := manager.Recover(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("session recovery failed: %w", err)
	}
	logger.Info("Session recovery done", "reattached", report.Reattached, "discarded", report.Discarded)

	if config.EnableInspector || logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Badger inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, "/inspect", SessionMapper, tracker.Stats)
	}

	// 6. Supervision : fanout, telemetry, expiry sweep, self metrics
	sup := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)

	fanout := workers.NewEventFanout(logger, domainChan, telemetryChan).Add([]contract.EventSink{
		tracker,
		sink.NewLogSink(logger),
		sink.NewJournalSink(journal, logger, config.JournalBatchSize, config.JournalFlushInterval),
	})

	handlers := []event.Handler{
		event.NewRosterChangeHandler(logger, counter),
		event.NewBalanceOutcomeHandler(logger, counter),
		event.NewLifecycleHandler(logger, counter),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewProcessStatsHandler(logger),
	}

	sup.Add(
		fanout,
		workers.NewTelemetryWorker(logger, config.MetricInterval, telemetryChan, handlers),
		workers.NewExpiryWorker(logger, manager, config.SweepInterval),
		workers.NewProcessStatsWorker(logger, tracker, telemetryChan, config.MetricInterval),
		workers.NewChannelCapacityWorker(logger, []workers.NamedChannel{
			{Name: "domainEvent", Channel: domainChan},
			{Name: "telemetryEvent", Channel: telemetryChan},
		}, telemetryChan, config.MetricInterval),
	)

	// 7. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		logger.Info("Starting workers...")
		sup.Run(ctx)
		close(supDone)
	}()

	// 8. Interactive gateway on stdin
	sessionService := services.NewSessionService(manager)
	profileService := services.NewProfileService(linkStore, ratings)
	gateway := newConsoleGateway(logger, sessionService, profileService, consoleLocation)

	gatewayDone := make(chan struct{})
	go func() {
		gateway.Run(ctx)
		close(gatewayDone)
	}()

	// 9. Wait for Stop
	// The execution blocks here until either a signal is received or the console is closed.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case <-gatewayDone:
		logger.Info("Console closed")
	}

	// 10. Final Cleanup (Graceful Shutdown)
	// Workers drain their channels before the database closes.
	logger.Info("Shutting down gracefully...")
	stop()
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// SessionMapper lays out one stored session snapshot as an inspector row.
func SessionMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var record repositories.SessionRecord
	if err := json.Unmarshal(val, &record); err != nil {
		row.Detail = "Error: decode failed"
		return row
	}

	row.Type = record.State
	row.Namespace = record.GuildID + ":" + record.ChannelID
	row.Detail = fmt.Sprintf("%d/%d players", len(record.Roster), record.Capacity)

	if len(record.TeamA) > 0 {
		totalA, totalB := 0, 0
		for _, p := range record.TeamA {
			totalA += p.Rating
		}
		for _, p := range record.TeamB {
			totalB += p.Rating
		}
		gap := totalA - totalB
		if gap < 0 {
			gap = -gap
		}
		row.Scores = fmt.Sprintf("A:%d B:%d gap:%d", totalA, totalB, gap)
	}
	return row
}
