package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/core/events/kafka"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/storage"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers: the recurring transaction sweep and the event bus consumer.`,
}

// Recurring transaction worker command
var recurringWorkerCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Start the recurring transaction worker",
	Long:  `Sweep active recurring schedules on an interval and materialize the due ones as transactions`,
	Run: func(cmd *cobra.Command, args []string) {
		startRecurringWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	sweepInterval  time.Duration
	sweepBatchSize int
)

func startRecurringWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := initLogger(config)

	store, err := storage.Open(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(lg)
	var kafkaPublisher *kafka.Publisher
	if config.Events.Enabled {
		kafkaPublisher = kafka.NewPublisher(config.Events.BrokerList(), config.Events.TopicPrefix, lg)
		kafkaPublisher.Forward(eventBus,
			events.EventTypeTransactionCreated,
			events.EventTypeRecurringExecuted)
	}

	// Use command line flags if provided, otherwise use config values
	interval := getDurationFlag(sweepInterval, config.Worker.RecurringInterval)
	batchSize := getIntFlag(sweepBatchSize, config.Worker.BatchSize)

	transactionService := transaction.NewService(store.Transactions, eventBus, lg)
	processor := recurring.NewProcessor(store.Recurring, transactionService, eventBus, batchSize, lg)

	lg.Info("starting recurring worker",
		"interval", interval,
		"batch_size", batchSize,
		"backend", config.Storage.Backend)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		result, err := processor.ProcessDue(ctx, time.Now().UTC())
		if err != nil {
			lg.Error("recurring sweep failed", "error", err)
			return
		}
		lg.Info("sweep complete",
			"due", result.Due,
			"executed", result.Executed,
			"failed", result.Failed)
	}

	// Run one sweep immediately so a restart never delays due schedules by
	// a full interval.
	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("recurring worker is running. Press Ctrl+C to stop.")

	for {
		select {
		case <-ticker.C:
			sweep()
		case sig := <-sigChan:
			lg.Info("received signal, shutting down recurring worker", "signal", sig)
			if kafkaPublisher != nil {
				if err := kafkaPublisher.Close(); err != nil {
					lg.Error("kafka publisher close error", "error", err)
				}
			}
			if err := store.Close(); err != nil {
				lg.Error("storage close error", "error", err)
			}
			lg.Info("recurring worker shutdown complete")
			return
		}
	}
}

func startEventWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := initLogger(config)

	eventBus := events.NewEventBus(lg)

	domainEventTypes := []string{
		events.EventTypeTransactionCreated,
		events.EventTypeBudgetsGenerated,
		events.EventTypeRecurringExecuted,
	}
	for _, eventType := range domainEventTypes {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("received domain event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	lg.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down event bus", "signal", sig)
	lg.Info("event bus shutdown complete")
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	recurringWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")
	recurringWorkerCmd.Flags().IntVar(&sweepBatchSize, "batch-size", 0, "Maximum schedules per sweep (overrides config)")

	workerCmd.AddCommand(recurringWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)
}
