package transaction_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/core/events"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestTransaction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Suite")
}

type mockRepository struct {
	rows       map[string]*transaction.Transaction
	createErr  error
	listErr    error
	patches    []transaction.Patch
	deletedIDs []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[string]*transaction.Transaction)}
}

func (m *mockRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[tx.ID] = tx
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	tx, ok := m.rows[id]
	if !ok || tx.UserID != userID {
		return nil, internal.ErrTransactionNotFound
	}
	return tx, nil
}

func (m *mockRepository) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
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
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockRepository) Patch(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error) {
	tx, ok := m.rows[id]
	if !ok || tx.UserID != userID {
		return nil, internal.ErrTransactionNotFound
	}
	m.patches = append(m.patches, patch)
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	return tx, nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, id string) error {
	tx, ok := m.rows[id]
	if !ok || tx.UserID != userID {
		return internal.ErrTransactionNotFound
	}
	delete(m.rows, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type mockEventPublisher struct {
	published []events.Event
}

func (m *mockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func strPtr(s string) *string {
	return &s
}

var _ = Describe("Transaction Service", func() {
	var (
		repo      *mockRepository
		publisher *mockEventPublisher
		service   *transaction.Service
		ctx       context.Context
	)

	validDTO := transaction.CreateTransactionDTO{
		Category:    "Food",
		Amount:      decimal.NewFromFloat(45.50),
		Type:        "expense",
		Date:        "2024-03-15",
		Description: "groceries",
	}

	BeforeEach(func() {
		repo = newMockRepository()
		publisher = &mockEventPublisher{}
		testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = transaction.NewService(repo, publisher, testLogger)
		ctx = context.Background()
	})

	Describe("CreateTransaction", func() {
		It("records the transaction with a generated id", func() {
			tx, err := service.CreateTransaction(ctx, "user-1", validDTO)

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.ID).NotTo(BeEmpty())
			Expect(tx.UserID).To(Equal("user-1"))
			Expect(tx.Category).To(Equal("Food"))
			Expect(tx.Amount.StringFixed(2)).To(Equal("45.50"))
			Expect(tx.Date.Format("2006-01-02")).To(Equal("2024-03-15"))
			Expect(tx.Month()).To(Equal("2024-03"))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("normalizes the type to its canonical form", func() {
			dto := validDTO
			dto.Type = " Expense "

			tx, err := service.CreateTransaction(ctx, "user-1", dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Type).To(Equal(transaction.TypeExpense))
		})

		It("publishes a created event carrying the month", func() {
			_, err := service.CreateTransaction(ctx, "user-1", validDTO)

			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			event := publisher.published[0]
			Expect(event.EventType()).To(Equal(events.EventTypeTransactionCreated))
			Expect(event.Payload()).To(HaveKeyWithValue("month", "2024-03"))
		})

		It("rejects a zero amount", func() {
			dto := validDTO
			dto.Amount = decimal.Zero

			_, err := service.CreateTransaction(ctx, "user-1", dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("rejects an unknown type", func() {
			dto := validDTO
			dto.Type = "transfer"

			_, err := service.CreateTransaction(ctx, "user-1", dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidType))
		})

		It("rejects a date without zero padding", func() {
			dto := validDTO
			dto.Date = "2024-3-15"

			_, err := service.CreateTransaction(ctx, "user-1", dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("rejects an impossible calendar date", func() {
			dto := validDTO
			dto.Date = "2024-02-30"

			_, err := service.CreateTransaction(ctx, "user-1", dto)

			Expect(err).To(HaveOccurred())
		})

		It("does not publish when the write fails", func() {
			repo.createErr = errors.New("store unavailable")

			_, err := service.CreateTransaction(ctx, "user-1", validDTO)

			Expect(err).To(MatchError("store unavailable"))
			Expect(publisher.published).To(BeEmpty())
		})
	})

	Describe("ListTransactions", func() {
		It("rejects a malformed month filter", func() {
			_, err := service.ListTransactions(ctx, "user-1", transaction.ListFilter{Month: "2024-3"})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidMonth))
		})

		It("passes the filter through to the repository", func() {
			_, err := service.CreateTransaction(ctx, "user-1", validDTO)
			Expect(err).NotTo(HaveOccurred())

			other := validDTO
			other.Date = "2024-04-02"
			_, err = service.CreateTransaction(ctx, "user-1", other)
			Expect(err).NotTo(HaveOccurred())

			transactions, err := service.ListTransactions(ctx, "user-1", transaction.ListFilter{Month: "2024-03"})

			Expect(err).NotTo(HaveOccurred())
			Expect(transactions).To(HaveLen(1))
			Expect(transactions[0].Month()).To(Equal("2024-03"))
		})
	})

	Describe("UpdateTransaction", func() {
		var existing *transaction.Transaction

		BeforeEach(func() {
			var err error
			existing, err = service.CreateTransaction(ctx, "user-1", validDTO)
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies only the present fields", func() {
			newAmount := decimal.NewFromInt(60)
			tx, err := service.UpdateTransaction(ctx, "user-1", existing.ID, transaction.UpdateTransactionDTO{
				Amount: &newAmount,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Amount.StringFixed(2)).To(Equal("60.00"))
			Expect(tx.Category).To(Equal("Food"))
		})

		It("moves the transaction between months when the date changes", func() {
			tx, err := service.UpdateTransaction(ctx, "user-1", existing.ID, transaction.UpdateTransactionDTO{
				Date: strPtr("2024-04-01"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Month()).To(Equal("2024-04"))

			Expect(repo.patches).To(HaveLen(1))
			patch := repo.patches[0]
			Expect(patch.Month).NotTo(BeNil())
			Expect(*patch.Month).To(Equal("2024-04"))
		})

		It("leaves the month patch empty when the date is untouched", func() {
			newAmount := decimal.NewFromInt(60)
			_, err := service.UpdateTransaction(ctx, "user-1", existing.ID, transaction.UpdateTransactionDTO{
				Amount: &newAmount,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.patches[0].Month).To(BeNil())
		})

		It("normalizes a patched type", func() {
			tx, err := service.UpdateTransaction(ctx, "user-1", existing.ID, transaction.UpdateTransactionDTO{
				Type: strPtr("INCOME"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Type).To(Equal(transaction.TypeIncome))
		})

		It("rejects an empty patch", func() {
			_, err := service.UpdateTransaction(ctx, "user-1", existing.ID, transaction.UpdateTransactionDTO{})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("propagates not found for another user's transaction", func() {
			newAmount := decimal.NewFromInt(60)
			_, err := service.UpdateTransaction(ctx, "user-2", existing.ID, transaction.UpdateTransactionDTO{
				Amount: &newAmount,
			})

			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("DeleteTransaction", func() {
		It("removes the transaction", func() {
			tx, err := service.CreateTransaction(ctx, "user-1", validDTO)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteTransaction(ctx, "user-1", tx.ID)).To(Succeed())
			Expect(repo.deletedIDs).To(ContainElement(tx.ID))
		})

		It("propagates not found", func() {
			err := service.DeleteTransaction(ctx, "user-1", "missing")

			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})
})
