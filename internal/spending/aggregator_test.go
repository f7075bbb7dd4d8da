package spending_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/spending"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestSpending(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Spending Suite")
}

type mockLister struct {
	rows    []*transaction.Transaction
	listErr error
	filters []transaction.ListFilter
}

func (m *mockLister) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	m.filters = append(m.filters, filter)
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*transaction.Transaction
	for _, tx := range m.rows {
		if tx.UserID != userID {
			continue
		}
		if filter.Month != "" && tx.Month() != filter.Month {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func txRow(userID, category, txType, amount, date string) *transaction.Transaction {
	d, err := time.Parse("2006-01-02", date)
	Expect(err).NotTo(HaveOccurred())
	value, err := decimal.NewFromString(amount)
	Expect(err).NotTo(HaveOccurred())
	return &transaction.Transaction{
		ID:       userID + "-" + category + "-" + date,
		UserID:   userID,
		Category: category,
		Amount:   value,
		Type:     txType,
		Date:     d,
	}
}

var _ = Describe("Aggregator", func() {
	var (
		lister     *mockLister
		aggregator *spending.Aggregator
		ctx        context.Context
	)

	BeforeEach(func() {
		lister = &mockLister{}
		testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		aggregator = spending.NewAggregator(lister, testLogger)
		ctx = context.Background()
	})

	Describe("ActualSpending", func() {
		It("sums expenses per category", func() {
			lister.rows = []*transaction.Transaction{
				txRow("user-1", "Food", transaction.TypeExpense, "84.20", "2024-03-03"),
				txRow("user-1", "Food", transaction.TypeExpense, "12.30", "2024-03-18"),
				txRow("user-1", "Transport", transaction.TypeExpense, "40.00", "2024-03-09"),
			}

			totals, err := aggregator.ActualSpending(ctx, "user-1", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(totals).To(HaveLen(2))
			Expect(totals["Food"].StringFixed(2)).To(Equal("96.50"))
			Expect(totals["Transport"].StringFixed(2)).To(Equal("40.00"))
		})

		It("ignores income rows", func() {
			lister.rows = []*transaction.Transaction{
				txRow("user-1", "Food", transaction.TypeExpense, "50.00", "2024-03-03"),
				txRow("user-1", "Salary", transaction.TypeIncome, "3200.00", "2024-03-01"),
			}

			totals, err := aggregator.ActualSpending(ctx, "user-1", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(totals).To(HaveLen(1))
			Expect(totals).NotTo(HaveKey("Salary"))
		})

		It("leaves categories without spending absent", func() {
			totals, err := aggregator.ActualSpending(ctx, "user-1", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(totals).To(BeEmpty())
		})

		It("routes the read through the month filter", func() {
			_, err := aggregator.ActualSpending(ctx, "user-1", "2024-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(lister.filters).To(HaveLen(1))
			Expect(lister.filters[0].Month).To(Equal("2024-03"))
		})

		It("rejects a malformed month", func() {
			_, err := aggregator.ActualSpending(ctx, "user-1", "March 2024")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidMonth))
			Expect(lister.filters).To(BeEmpty())
		})

		It("propagates listing failures", func() {
			lister.listErr = errors.New("store unavailable")

			_, err := aggregator.ActualSpending(ctx, "user-1", "2024-03")

			Expect(err).To(MatchError("store unavailable"))
		})
	})
})
