package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/month"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/spending"
	"github.com/frahmantamala/envelope-budget/internal/storage"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var clearData bool

// seedUserID is the demo identity; point X-User-ID (or a JWT subject) at it
// to browse the seeded data.
const seedUserID = "demo"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the storage backend with sample data",
	Long:  `Seed the configured storage backend with demo data: the default budget template, two months of transactions, envelope budgets and a recurring schedule.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		lg := initLogger(cfg)
		ctx := context.Background()

		store, err := storage.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to open storage: %v", err)
		}
		defer store.Close()

		templateService := template.NewService(store.Templates, lg, cfg.Budget.DefaultTemplateName, defaultTemplateEntries(cfg.Budget))
		transactionService := transaction.NewService(store.Transactions, nil, lg)
		spendingAggregator := spending.NewAggregator(store.Transactions, lg)
		budgetService := budget.NewService(store.Budgets, templateService, spendingAggregator, nil, lg)
		recurringService := recurring.NewService(store.Recurring, lg)

		if clearData {
			if err := clearSeedData(ctx, transactionService, templateService, recurringService); err != nil {
				log.Fatalf("failed to clear existing data: %v", err)
			}
			fmt.Println("Cleared existing data for user:", seedUserID)
		}

		tpl, err := templateService.ProvisionDefault(ctx, seedUserID)
		if err != nil {
			log.Fatalf("failed to provision default template: %v", err)
		}
		fmt.Printf("Seeded template %q with %d categories\n", tpl.Name, len(tpl.Entries))

		now := time.Now()
		currentMonth := month.Current(now)
		previousMonth, appErr := month.Previous(currentMonth)
		if appErr != nil {
			log.Fatalf("failed to derive previous month: %v", appErr)
		}

		existing, err := transactionService.ListTransactions(ctx, seedUserID, transaction.ListFilter{Limit: 1})
		if err != nil {
			log.Fatalf("failed to check existing transactions: %v", err)
		}
		if len(existing) > 0 {
			fmt.Println("Demo transactions already exist; skipping (use --clear to reseed)")
		} else {
			samples := []transaction.CreateTransactionDTO{
				{Category: "Food", Amount: decimal.NewFromFloat(84.20), Type: "expense", Date: previousMonth + "-03", Description: "weekly groceries"},
				{Category: "Food", Amount: decimal.NewFromFloat(112.45), Type: "expense", Date: previousMonth + "-17", Description: "weekly groceries"},
				{Category: "Transportation", Amount: decimal.NewFromFloat(62.00), Type: "expense", Date: previousMonth + "-09", Description: "monthly transit pass"},
				{Category: "Entertainment", Amount: decimal.NewFromFloat(35.50), Type: "expense", Date: previousMonth + "-21", Description: "cinema"},
				{Category: "Bills", Amount: decimal.NewFromFloat(180.00), Type: "expense", Date: previousMonth + "-05", Description: "electricity"},
				{Category: "Salary", Amount: decimal.NewFromFloat(3200.00), Type: "income", Date: previousMonth + "-01", Description: "monthly salary"},
				{Category: "Food", Amount: decimal.NewFromFloat(97.80), Type: "expense", Date: currentMonth + "-04", Description: "weekly groceries"},
				{Category: "Shopping", Amount: decimal.NewFromFloat(149.99), Type: "expense", Date: currentMonth + "-08", Description: "running shoes"},
				{Category: "Healthcare", Amount: decimal.NewFromFloat(25.00), Type: "expense", Date: currentMonth + "-11", Description: "pharmacy"},
				{Category: "Salary", Amount: decimal.NewFromFloat(3200.00), Type: "income", Date: currentMonth + "-01", Description: "monthly salary"},
			}
			for _, dto := range samples {
				if _, err := transactionService.CreateTransaction(ctx, seedUserID, dto); err != nil {
					log.Fatalf("failed to seed transaction %s %s: %v", dto.Date, dto.Category, err)
				}
			}
			fmt.Printf("Seeded %d transactions across %s and %s\n", len(samples), previousMonth, currentMonth)
		}

		// Generate the previous month first so the current month picks up
		// rollover from its leftovers.
		if _, err := budgetService.GetOrCreateBudgets(ctx, seedUserID, tpl.Name, previousMonth); err != nil {
			log.Fatalf("failed to generate budgets for %s: %v", previousMonth, err)
		}
		budgets, err := budgetService.GetOrCreateBudgets(ctx, seedUserID, tpl.Name, currentMonth)
		if err != nil {
			log.Fatalf("failed to generate budgets for %s: %v", currentMonth, err)
		}
		fmt.Printf("Generated %d envelope budgets for %s\n", len(budgets), currentMonth)

		schedules, err := recurringService.ListRecurring(ctx, seedUserID)
		if err != nil {
			log.Fatalf("failed to check existing recurring schedules: %v", err)
		}
		if len(schedules) > 0 {
			fmt.Println("Recurring schedule already exists; skipping")
		} else {
			rec, err := recurringService.CreateRecurring(ctx, seedUserID, recurring.CreateRecurringDTO{
				Category:    "Bills",
				Amount:      decimal.NewFromFloat(1200.00),
				Type:        "expense",
				Description: "rent",
				Frequency:   recurring.FrequencyMonthly,
				DayOfMonth:  1,
			})
			if err != nil {
				log.Fatalf("failed to seed recurring schedule: %v", err)
			}
			fmt.Println("Seeded recurring schedule:", rec.ID)
		}

		fmt.Println("Seeding complete for user:", seedUserID)
	},
}

// clearSeedData removes the demo user's transactions, schedules and
// templates. Envelope budgets have no delete operation, so surviving rows
// are returned as-is by the next generation call.
func clearSeedData(ctx context.Context, transactionService *transaction.Service, templateService *template.Service, recurringService *recurring.Service) error {
	transactions, err := transactionService.ListTransactions(ctx, seedUserID, transaction.ListFilter{})
	if err != nil {
		return err
	}
	for _, tx := range transactions {
		if err := transactionService.DeleteTransaction(ctx, seedUserID, tx.ID); err != nil {
			return err
		}
	}

	schedules, err := recurringService.ListRecurring(ctx, seedUserID)
	if err != nil {
		return err
	}
	for _, rec := range schedules {
		if err := recurringService.DeleteRecurring(ctx, seedUserID, rec.ID); err != nil {
			return err
		}
	}

	templates, err := templateService.ListTemplates(ctx, seedUserID)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if err := templateService.DeleteTemplate(ctx, seedUserID, t.Name); err != nil {
			return err
		}
	}

	return nil
}
