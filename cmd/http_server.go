package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/analysis"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/core/events/kafka"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/spending"
	"github.com/frahmantamala/envelope-budget/internal/storage"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/frahmantamala/envelope-budget/internal/transport/rest"
	"github.com/frahmantamala/envelope-budget/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Store  *storage.Store
	Router *chi.Mux
	Events *events.EventBus
	Kafka  *kafka.Publisher
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Config.Storage.Backend)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if deps.Kafka != nil {
			if err := deps.Kafka.Close(); err != nil {
				deps.Logger.Error("Kafka publisher close error", "error", err)
			}
		}
		if err := deps.Store.Close(); err != nil {
			deps.Logger.Error("Storage close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := initLogger(config)

	store, err := storage.Open(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	var kafkaPublisher *kafka.Publisher
	if config.Events.Enabled {
		kafkaPublisher = kafka.NewPublisher(config.Events.BrokerList(), config.Events.TopicPrefix, lg)
		kafkaPublisher.Forward(eventBus, events.EventTypeTransactionCreated, events.EventTypeBudgetsGenerated)
		lg.Info("kafka event forwarding enabled", "brokers", config.Events.Brokers)
	}

	transactionService := transaction.NewService(store.Transactions, eventBus, lg)
	templateService := template.NewService(store.Templates, lg, config.Budget.DefaultTemplateName, defaultTemplateEntries(config.Budget))
	spendingAggregator := spending.NewAggregator(store.Transactions, lg)
	budgetService := budget.NewService(store.Budgets, templateService, spendingAggregator, eventBus, lg)
	analysisService := analysis.NewService(budgetService, spendingAggregator, lg)
	recurringService := recurring.NewService(store.Recurring, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, config, store,
		transaction.NewHandler(transactionService),
		template.NewHandler(templateService),
		budget.NewHandler(budgetService),
		analysis.NewHandler(analysisService),
		recurring.NewHandler(recurringService),
		lg)

	return &Dependencies{
		Config: config,
		Store:  store,
		Router: router,
		Events: eventBus,
		Kafka:  kafkaPublisher,
		Logger: lg,
	}, nil
}

func initLogger(config *internal.Config) *slog.Logger {
	env := "development"
	if strings.EqualFold(config.Observability.Logging.Format, "json") {
		env = "production"
	}
	logger.Init(env, config.Observability.Logging.Level)
	return logger.LoggerWrapper()
}

// defaultTemplateEntries converts the config override list; empty means the
// built-in preset.
func defaultTemplateEntries(cfg internal.BudgetConfig) []template.Entry {
	entries := make([]template.Entry, 0, len(cfg.DefaultCategories))
	for _, c := range cfg.DefaultCategories {
		entries = append(entries, template.Entry{
			Category:        c.Category,
			BudgetAmount:    decimal.NewFromFloat(c.Amount),
			RolloverEnabled: c.RolloverEnabled,
		})
	}
	return entries
}
