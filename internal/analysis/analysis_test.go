package analysis_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/analysis"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestAnalysis(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Analysis Suite")
}

type mockBudgetSource struct {
	budgets    []*budget.EnvelopeBudget
	shouldFail bool
	failError  error
}

func (m *mockBudgetSource) ListBudgets(ctx context.Context, userID, templateName, month string) ([]*budget.EnvelopeBudget, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.budgets, nil
}

type mockSpendingAggregator struct {
	spending   map[string]decimal.Decimal
	shouldFail bool
	failError  error
}

func (m *mockSpendingAggregator) ActualSpending(ctx context.Context, userID, month string) (map[string]decimal.Decimal, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.spending, nil
}

func testBudget(category string, amount, rollover int64, rolloverEnabled bool) *budget.EnvelopeBudget {
	return &budget.EnvelopeBudget{
		ID:              "bgt_" + category,
		UserID:          "user-1",
		TemplateName:    "Default",
		Month:           "2024-03",
		Category:        category,
		BudgetAmount:    decimal.NewFromInt(amount),
		RolloverAmount:  decimal.NewFromInt(rollover),
		RolloverEnabled: rolloverEnabled,
		IsActive:        true,
	}
}

var _ = Describe("Analyze", func() {
	It("computes the summary across budgeted categories", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Food", 500, 0, true),
			testBudget("Entertainment", 200, 0, false),
		}
		actual := map[string]decimal.Decimal{
			"Food":          decimal.NewFromInt(300),
			"Entertainment": decimal.NewFromInt(250),
		}

		result := analysis.Analyze(budgets, actual)

		Expect(result.Summary.TotalBudgeted.StringFixed(2)).To(Equal("700.00"))
		Expect(result.Summary.TotalActual.StringFixed(2)).To(Equal("550.00"))
		Expect(result.Summary.TotalRemaining.StringFixed(2)).To(Equal("150.00"))
		Expect(result.Summary.OverBudgetCategories).To(Equal(1))
		Expect(result.Summary.BudgetUtilization.StringFixed(2)).To(Equal("78.57"))
	})

	It("includes rollover in the available total", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Food", 500, 100, true),
		}
		actual := map[string]decimal.Decimal{
			"Food": decimal.NewFromInt(300),
		}

		result := analysis.Analyze(budgets, actual)

		Expect(result.Categories).To(HaveLen(1))
		entry := result.Categories[0]
		Expect(entry.Budgeted.StringFixed(2)).To(Equal("600.00"))
		Expect(entry.Remaining.StringFixed(2)).To(Equal("300.00"))
		Expect(entry.Percentage.StringFixed(2)).To(Equal("50.00"))
		Expect(entry.RolloverAmount.StringFixed(2)).To(Equal("100.00"))
		Expect(entry.HasBudget).To(BeTrue())
	})

	It("treats a budgeted category with no spending as zero actual", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Transportation", 300, 0, false),
		}

		result := analysis.Analyze(budgets, map[string]decimal.Decimal{})

		entry := result.Categories[0]
		Expect(entry.Actual.StringFixed(2)).To(Equal("0.00"))
		Expect(entry.Remaining.StringFixed(2)).To(Equal("300.00"))
		Expect(entry.Percentage.StringFixed(2)).To(Equal("0.00"))
		Expect(result.Summary.OverBudgetCategories).To(Equal(0))
	})

	It("reports zero percentage when the available total is zero", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Misc", 0, 0, false),
		}
		actual := map[string]decimal.Decimal{
			"Misc": decimal.NewFromInt(40),
		}

		result := analysis.Analyze(budgets, actual)

		entry := result.Categories[0]
		Expect(entry.Percentage.StringFixed(2)).To(Equal("0.00"))
		Expect(entry.Remaining.StringFixed(2)).To(Equal("-40.00"))
		Expect(result.Summary.OverBudgetCategories).To(Equal(1))
	})

	It("appends unbudgeted spending after budgeted categories", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Food", 500, 0, true),
		}
		actual := map[string]decimal.Decimal{
			"Food":   decimal.NewFromInt(100),
			"Travel": decimal.NewFromInt(80),
			"Gifts":  decimal.NewFromInt(20),
		}

		result := analysis.Analyze(budgets, actual)

		Expect(result.Categories).To(HaveLen(3))
		Expect(result.Categories[0].Category).To(Equal("Food"))
		Expect(result.Categories[1].Category).To(Equal("Gifts"))
		Expect(result.Categories[2].Category).To(Equal("Travel"))

		travel := result.Categories[2]
		Expect(travel.Budgeted.StringFixed(2)).To(Equal("0.00"))
		Expect(travel.Remaining.StringFixed(2)).To(Equal("-80.00"))
		Expect(travel.Percentage.StringFixed(2)).To(Equal("0.00"))
		Expect(travel.HasBudget).To(BeFalse())
		Expect(travel.UnbudgetedSpending).To(BeTrue())
	})

	It("counts over-budget categories from budgeted rows only", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Food", 500, 0, true),
		}
		actual := map[string]decimal.Decimal{
			"Food":   decimal.NewFromInt(100),
			"Travel": decimal.NewFromInt(9999),
		}

		result := analysis.Analyze(budgets, actual)

		Expect(result.Summary.OverBudgetCategories).To(Equal(0))
		Expect(result.Summary.TotalActual.StringFixed(2)).To(Equal("10099.00"))
	})

	It("returns an empty result for no budgets and no spending", func() {
		result := analysis.Analyze(nil, nil)

		Expect(result.Categories).To(BeEmpty())
		Expect(result.Summary.TotalBudgeted.StringFixed(2)).To(Equal("0.00"))
		Expect(result.Summary.BudgetUtilization.StringFixed(2)).To(Equal("0.00"))
	})

	It("rounds percentages to two decimal places", func() {
		budgets := []*budget.EnvelopeBudget{
			testBudget("Food", 300, 0, false),
		}
		actual := map[string]decimal.Decimal{
			"Food": decimal.NewFromInt(100),
		}

		result := analysis.Analyze(budgets, actual)

		Expect(result.Categories[0].Percentage.StringFixed(2)).To(Equal("33.33"))
	})
})

var _ = Describe("Analysis Service", func() {
	var (
		budgetSource *mockBudgetSource
		aggregator   *mockSpendingAggregator
		service      *analysis.Service
		ctx          context.Context
	)

	BeforeEach(func() {
		budgetSource = &mockBudgetSource{
			budgets: []*budget.EnvelopeBudget{
				testBudget("Food", 500, 0, true),
			},
		}
		aggregator = &mockSpendingAggregator{
			spending: map[string]decimal.Decimal{
				"Food": decimal.NewFromInt(200),
			},
		}
		testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = analysis.NewService(budgetSource, aggregator, testLogger)
		ctx = context.Background()
	})

	Describe("GetAnalysis", func() {
		It("combines stored budgets with aggregated spending", func() {
			result, err := service.GetAnalysis(ctx, "user-1", "Default", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Categories).To(HaveLen(1))
			Expect(result.Categories[0].Actual.StringFixed(2)).To(Equal("200.00"))
		})

		It("rejects an empty template name", func() {
			_, err := service.GetAnalysis(ctx, "user-1", "", "2024-03")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a malformed month", func() {
			_, err := service.GetAnalysis(ctx, "user-1", "Default", "2024-3")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidMonth))
		})

		It("returns an empty analysis when no budgets exist", func() {
			budgetSource.budgets = nil
			aggregator.spending = map[string]decimal.Decimal{}

			result, err := service.GetAnalysis(ctx, "user-1", "Default", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Categories).To(BeEmpty())
		})

		It("propagates budget source failures", func() {
			budgetSource.shouldFail = true
			budgetSource.failError = errors.New("store unavailable")

			_, err := service.GetAnalysis(ctx, "user-1", "Default", "2024-03")

			Expect(err).To(MatchError("store unavailable"))
		})

		It("propagates aggregator failures", func() {
			aggregator.shouldFail = true
			aggregator.failError = errors.New("list failed")

			_, err := service.GetAnalysis(ctx, "user-1", "Default", "2024-03")

			Expect(err).To(MatchError("list failed"))
		})
	})
})
