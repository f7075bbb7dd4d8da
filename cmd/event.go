package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/core/events/kafka"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage domain events: publish test events and exercise the kafka forwarding path`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event through the event bus. With events enabled in the
config, the event is also forwarded to kafka, smoke-testing the full path.

Domain event types: ` + events.EventTypeTransactionCreated + `, ` +
		events.EventTypeBudgetsGenerated + `, ` + events.EventTypeRecurringExecuted,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := initLogger(config)

	eventBus := events.NewEventBus(lg)

	var kafkaPublisher *kafka.Publisher
	if config.Events.Enabled {
		kafkaPublisher = kafka.NewPublisher(config.Events.BrokerList(), config.Events.TopicPrefix, lg)
		kafkaPublisher.Forward(eventBus, eventType)
		lg.Info("kafka forwarding enabled for test event", "brokers", config.Events.Brokers)
	}

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	testEvent := events.BaseEvent{
		ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	if err := eventBus.Publish(context.Background(), testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	// Handlers run asynchronously; give them a moment before exiting.
	time.Sleep(100 * time.Millisecond)

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			lg.Error("kafka publisher close error", "error", err)
		}
	}
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(publishEventCmd)
}
