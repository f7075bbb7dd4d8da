package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	budgetDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/budget"
	recurringDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/recurring"
	templateDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/template"
	txDatamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/transaction"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRepositories(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Repositories Suite")
}

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	Expect(err).NotTo(HaveOccurred())

	err = db.AutoMigrate(
		&txDatamodel.Transaction{},
		&templateDatamodel.BudgetTemplate{},
		&budgetDatamodel.EnvelopeBudget{},
		&recurringDatamodel.RecurringTransaction{},
	)
	Expect(err).NotTo(HaveOccurred())

	return db
}

func closeTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	Expect(sqlDB.Close()).To(Succeed())
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return d
}

var _ = Describe("TransactionRepository", func() {
	var (
		db   *gorm.DB
		repo transaction.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		db = openTestDB()
		repo = NewTransactionRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		closeTestDB(db)
	})

	newTransaction := func(id, category, txType, day string, amount int64) *transaction.Transaction {
		return &transaction.Transaction{
			ID:       id,
			UserID:   "user-1",
			Category: category,
			Amount:   decimal.NewFromInt(amount),
			Type:     txType,
			Date:     date(day),
		}
	}

	Describe("Create and GetByID", func() {
		It("should round-trip a transaction", func() {
			tx := newTransaction("tx-1", "Food", "expense", "2024-03-10", 42)
			Expect(repo.Create(ctx, tx)).To(Succeed())

			retrieved, err := repo.GetByID(ctx, "user-1", "tx-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Category).To(Equal("Food"))
			Expect(retrieved.Amount.StringFixed(2)).To(Equal("42.00"))
			Expect(retrieved.Month()).To(Equal("2024-03"))
		})

		It("should return ErrTransactionNotFound for a missing id", func() {
			_, err := repo.GetByID(ctx, "user-1", "missing")
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})

		It("should not expose another user's transaction", func() {
			tx := newTransaction("tx-1", "Food", "expense", "2024-03-10", 42)
			Expect(repo.Create(ctx, tx)).To(Succeed())

			_, err := repo.GetByID(ctx, "user-2", "tx-1")
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(repo.Create(ctx, newTransaction("tx-1", "Food", "expense", "2024-03-10", 10))).To(Succeed())
			Expect(repo.Create(ctx, newTransaction("tx-2", "Food", "expense", "2024-03-20", 20))).To(Succeed())
			Expect(repo.Create(ctx, newTransaction("tx-3", "Transport", "expense", "2024-04-05", 30))).To(Succeed())
			Expect(repo.Create(ctx, newTransaction("tx-4", "Salary", "income", "2024-03-01", 1000))).To(Succeed())
		})

		It("should filter by month", func() {
			rows, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-03"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
		})

		It("should filter by category", func() {
			rows, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-03", Category: "Food"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})

		It("should order newest first", func() {
			rows, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-03"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].ID).To(Equal("tx-2"))
			Expect(rows[2].ID).To(Equal("tx-4"))
		})

		It("should apply limit and offset", func() {
			rows, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-03", Limit: 1, Offset: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("tx-1"))
		})
	})

	Describe("Patch", func() {
		BeforeEach(func() {
			Expect(repo.Create(ctx, newTransaction("tx-1", "Food", "expense", "2024-03-10", 10))).To(Succeed())
		})

		It("should apply only the present fields", func() {
			newCategory := "Groceries"
			updated, err := repo.Patch(ctx, "user-1", "tx-1", transaction.Patch{Category: &newCategory})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Category).To(Equal("Groceries"))
			Expect(updated.Amount.StringFixed(2)).To(Equal("10.00"))
		})

		It("should move the transaction between months when the date changes", func() {
			newDate := date("2024-04-02")
			newMonth := "2024-04"
			_, err := repo.Patch(ctx, "user-1", "tx-1", transaction.Patch{Date: &newDate, Month: &newMonth})
			Expect(err).NotTo(HaveOccurred())

			march, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-03"})
			Expect(err).NotTo(HaveOccurred())
			Expect(march).To(BeEmpty())

			april, err := repo.List(ctx, "user-1", transaction.ListFilter{Month: "2024-04"})
			Expect(err).NotTo(HaveOccurred())
			Expect(april).To(HaveLen(1))
		})

		It("should return ErrTransactionNotFound for a missing id", func() {
			newCategory := "Groceries"
			_, err := repo.Patch(ctx, "user-1", "missing", transaction.Patch{Category: &newCategory})
			Expect(err).To(Equal(internal.ErrTransactionNotFound))
		})
	})

	Describe("Delete", func() {
		It("should delete and then report not found", func() {
			Expect(repo.Create(ctx, newTransaction("tx-1", "Food", "expense", "2024-03-10", 10))).To(Succeed())

			Expect(repo.Delete(ctx, "user-1", "tx-1")).To(Succeed())
			Expect(repo.Delete(ctx, "user-1", "tx-1")).To(Equal(internal.ErrTransactionNotFound))
		})
	})
})

var _ = Describe("TemplateRepository", func() {
	var (
		db   *gorm.DB
		repo template.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		db = openTestDB()
		repo = NewTemplateRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		closeTestDB(db)
	})

	newTemplate := func(name string) *template.Template {
		return &template.Template{
			UserID: "user-1",
			Name:   name,
			Entries: []template.Entry{
				{Category: "Food", BudgetAmount: decimal.NewFromInt(500), RolloverEnabled: true},
				{Category: "Transport", BudgetAmount: decimal.NewFromInt(300)},
			},
		}
	}

	It("should round-trip a template with its entries", func() {
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())

		retrieved, err := repo.Get(ctx, "user-1", "Monthly")
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Entries).To(HaveLen(2))
		Expect(retrieved.Entries[0].Category).To(Equal("Food"))
		Expect(retrieved.Entries[0].BudgetAmount.StringFixed(2)).To(Equal("500.00"))
		Expect(retrieved.Entries[0].RolloverEnabled).To(BeTrue())
	})

	It("should reject a duplicate name for the same user", func() {
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Equal(internal.ErrTemplateExists))
	})

	It("should allow the same name for different users", func() {
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())

		other := newTemplate("Monthly")
		other.UserID = "user-2"
		Expect(repo.Create(ctx, other)).To(Succeed())
	})

	It("should list templates ordered by name", func() {
		Expect(repo.Create(ctx, newTemplate("Zeta"))).To(Succeed())
		Expect(repo.Create(ctx, newTemplate("Alpha"))).To(Succeed())

		rows, err := repo.List(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Name).To(Equal("Alpha"))
	})

	It("should replace the entry list", func() {
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())

		t := newTemplate("Monthly")
		t.Entries = []template.Entry{
			{Category: "Rent", BudgetAmount: decimal.NewFromInt(900)},
		}
		Expect(repo.Replace(ctx, t)).To(Succeed())

		retrieved, err := repo.Get(ctx, "user-1", "Monthly")
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Entries).To(HaveLen(1))
		Expect(retrieved.Entries[0].Category).To(Equal("Rent"))
	})

	It("should return ErrTemplateNotFound when replacing a missing template", func() {
		Expect(repo.Replace(ctx, newTemplate("Missing"))).To(Equal(internal.ErrTemplateNotFound))
	})

	It("should delete and then report not found", func() {
		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())
		Expect(repo.Delete(ctx, "user-1", "Monthly")).To(Succeed())
		Expect(repo.Delete(ctx, "user-1", "Monthly")).To(Equal(internal.ErrTemplateNotFound))
	})

	It("should report whether the user has any templates", func() {
		hasAny, err := repo.HasAny(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(hasAny).To(BeFalse())

		Expect(repo.Create(ctx, newTemplate("Monthly"))).To(Succeed())

		hasAny, err = repo.HasAny(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(hasAny).To(BeTrue())
	})
})

var _ = Describe("BudgetRepository", func() {
	var (
		db   *gorm.DB
		repo budget.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		db = openTestDB()
		repo = NewBudgetRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		closeTestDB(db)
	})

	newBudget := func(id, category string, amount int64) *budget.EnvelopeBudget {
		return &budget.EnvelopeBudget{
			ID:           id,
			UserID:       "user-1",
			TemplateName: "Default",
			Month:        "2024-03",
			Category:     category,
			BudgetAmount: decimal.NewFromInt(amount),
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
	}

	It("should create a batch and list it by month", func() {
		err := repo.BatchCreate(ctx, []*budget.EnvelopeBudget{
			newBudget("b-1", "Food", 500),
			newBudget("b-2", "Transport", 300),
		})
		Expect(err).NotTo(HaveOccurred())

		rows, err := repo.ListForMonth(ctx, "user-1", "Default", "2024-03")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Category).To(Equal("Food"))
	})

	It("should keep a single row per category under duplicate creates", func() {
		first := []*budget.EnvelopeBudget{newBudget("b-1", "Food", 500)}
		second := []*budget.EnvelopeBudget{newBudget("b-9", "Food", 999)}

		Expect(repo.BatchCreate(ctx, first)).To(Succeed())
		Expect(repo.BatchCreate(ctx, second)).To(Succeed())

		rows, err := repo.ListForMonth(ctx, "user-1", "Default", "2024-03")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].ID).To(Equal("b-1"))
		Expect(rows[0].BudgetAmount.StringFixed(2)).To(Equal("500.00"))
	})

	It("should return an empty slice for a month with no budgets", func() {
		rows, err := repo.ListForMonth(ctx, "user-1", "Default", "2030-01")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("should update only the budget amount", func() {
		Expect(repo.BatchCreate(ctx, []*budget.EnvelopeBudget{newBudget("b-1", "Food", 500)})).To(Succeed())

		updated, err := repo.UpdateAmount(ctx, "user-1", "Default", "2024-03", "Food", decimal.NewFromInt(650))
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.BudgetAmount.StringFixed(2)).To(Equal("650.00"))
		Expect(updated.ID).To(Equal("b-1"))
	})

	It("should return ErrBudgetNotFound for a missing category", func() {
		_, err := repo.UpdateAmount(ctx, "user-1", "Default", "2024-03", "Missing", decimal.NewFromInt(1))
		Expect(err).To(Equal(internal.ErrBudgetNotFound))
	})
})

var _ = Describe("RecurringRepository", func() {
	var (
		db   *gorm.DB
		repo recurring.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		db = openTestDB()
		repo = NewRecurringRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		closeTestDB(db)
	})

	newRecurring := func(id string, active bool) *recurring.RecurringTransaction {
		return &recurring.RecurringTransaction{
			ID:         id,
			UserID:     "user-1",
			Category:   "Bills",
			Amount:     decimal.NewFromInt(120),
			Type:       "expense",
			Frequency:  "monthly",
			DayOfMonth: 5,
			IsActive:   active,
		}
	}

	It("should round-trip a recurring transaction", func() {
		Expect(repo.Create(ctx, newRecurring("rec-1", true))).To(Succeed())

		retrieved, err := repo.GetByID(ctx, "user-1", "rec-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Frequency).To(Equal("monthly"))
		Expect(retrieved.DayOfMonth).To(Equal(5))
		Expect(retrieved.LastRunAt).To(BeNil())
	})

	It("should list only active rows across users", func() {
		Expect(repo.Create(ctx, newRecurring("rec-1", true))).To(Succeed())
		Expect(repo.Create(ctx, newRecurring("rec-2", false))).To(Succeed())

		other := newRecurring("rec-3", true)
		other.UserID = "user-2"
		Expect(repo.Create(ctx, other)).To(Succeed())

		rows, err := repo.ListActive(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
	})

	It("should persist a last_run_at advance", func() {
		rec := newRecurring("rec-1", true)
		Expect(repo.Create(ctx, rec)).To(Succeed())

		runAt := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)
		rec.LastRunAt = &runAt
		rec.UpdatedAt = runAt
		Expect(repo.Update(ctx, rec)).To(Succeed())

		retrieved, err := repo.GetByID(ctx, "user-1", "rec-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.LastRunAt).NotTo(BeNil())
		Expect(retrieved.LastRunAt.Unix()).To(Equal(runAt.Unix()))
	})

	It("should return ErrRecurringNotFound when updating a missing row", func() {
		Expect(repo.Update(ctx, newRecurring("missing", true))).To(Equal(internal.ErrRecurringNotFound))
	})

	It("should delete and then report not found", func() {
		Expect(repo.Create(ctx, newRecurring("rec-1", true))).To(Succeed())
		Expect(repo.Delete(ctx, "user-1", "rec-1")).To(Succeed())
		Expect(repo.Delete(ctx, "user-1", "rec-1")).To(Equal(internal.ErrRecurringNotFound))
	})
})
