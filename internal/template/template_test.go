package template_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/template"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestTemplate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Template Suite")
}

type templateKey struct {
	userID string
	name   string
}

type mockRepository struct {
	rows       map[templateKey]*template.Template
	createErr  error
	getErr     error
	replaceErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[templateKey]*template.Template)}
}

func (m *mockRepository) Create(ctx context.Context, t *template.Template) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := templateKey{t.UserID, t.Name}
	if _, ok := m.rows[key]; ok {
		return internal.ErrTemplateExists
	}
	m.rows[key] = t
	return nil
}

func (m *mockRepository) Get(ctx context.Context, userID, name string) (*template.Template, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	t, ok := m.rows[templateKey{userID, name}]
	if !ok {
		return nil, internal.ErrTemplateNotFound
	}
	return t, nil
}

func (m *mockRepository) List(ctx context.Context, userID string) ([]*template.Template, error) {
	var out []*template.Template
	for key, t := range m.rows {
		if key.userID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepository) Replace(ctx context.Context, t *template.Template) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	key := templateKey{t.UserID, t.Name}
	if _, ok := m.rows[key]; !ok {
		return internal.ErrTemplateNotFound
	}
	m.rows[key] = t
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, name string) error {
	key := templateKey{userID, name}
	if _, ok := m.rows[key]; !ok {
		return internal.ErrTemplateNotFound
	}
	delete(m.rows, key)
	return nil
}

func (m *mockRepository) HasAny(ctx context.Context, userID string) (bool, error) {
	for key := range m.rows {
		if key.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func entry(category string, amount int64, rollover bool) template.Entry {
	return template.Entry{
		Category:        category,
		BudgetAmount:    decimal.NewFromInt(amount),
		RolloverEnabled: rollover,
	}
}

var _ = Describe("Template Service", func() {
	var (
		repo    *mockRepository
		service *template.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockRepository()
		testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = template.NewService(repo, testLogger, "", nil)
		ctx = context.Background()
	})

	Describe("CreateTemplate", func() {
		It("stores a named template", func() {
			t, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name: "Monthly",
				Categories: []template.Entry{
					entry("Food", 500, true),
					entry("Transport", 300, false),
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(t.Name).To(Equal("Monthly"))
			Expect(t.Entries).To(HaveLen(2))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("rejects an empty category list", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name: "Empty",
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate category", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name: "Doubled",
				Categories: []template.Entry{
					entry("Food", 500, true),
					entry("Food", 200, false),
				},
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCategory))
		})

		It("rejects a negative budget amount", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name: "Broke",
				Categories: []template.Entry{
					entry("Food", -5, false),
				},
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("allows a zero budget amount", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name: "Placeholder",
				Categories: []template.Entry{
					entry("Savings", 0, true),
				},
			})

			Expect(err).NotTo(HaveOccurred())
		})

		It("propagates a name collision", func() {
			dto := template.CreateTemplateDTO{
				Name:       "Monthly",
				Categories: []template.Entry{entry("Food", 500, false)},
			}
			_, err := service.CreateTemplate(ctx, "user-1", dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateTemplate(ctx, "user-1", dto)
			Expect(err).To(MatchError(internal.ErrTemplateExists))
		})
	})

	Describe("ReplaceTemplate", func() {
		BeforeEach(func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name:       "Monthly",
				Categories: []template.Entry{entry("Food", 500, true)},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("swaps the full entry list", func() {
			t, err := service.ReplaceTemplate(ctx, "user-1", "Monthly", template.ReplaceTemplateDTO{
				Categories: []template.Entry{
					entry("Rent", 900, false),
					entry("Fun", 150, true),
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(t.Entries).To(HaveLen(2))
			Expect(t.Entries[0].Category).To(Equal("Rent"))
		})

		It("rejects replacing with no categories", func() {
			_, err := service.ReplaceTemplate(ctx, "user-1", "Monthly", template.ReplaceTemplateDTO{})

			Expect(err).To(HaveOccurred())
		})

		It("propagates not found for a missing template", func() {
			_, err := service.ReplaceTemplate(ctx, "user-1", "Nope", template.ReplaceTemplateDTO{
				Categories: []template.Entry{entry("Food", 500, false)},
			})

			Expect(err).To(MatchError(internal.ErrTemplateNotFound))
		})
	})

	Describe("DeleteTemplate", func() {
		It("removes the template", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name:       "Monthly",
				Categories: []template.Entry{entry("Food", 500, false)},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteTemplate(ctx, "user-1", "Monthly")).To(Succeed())
			Expect(repo.rows).To(BeEmpty())
		})

		It("propagates not found", func() {
			Expect(service.DeleteTemplate(ctx, "user-1", "Nope")).To(MatchError(internal.ErrTemplateNotFound))
		})
	})

	Describe("ProvisionDefault", func() {
		It("writes the built-in preset under the sentinel name", func() {
			t, err := service.ProvisionDefault(ctx, "user-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(t.Name).To(Equal(template.DefaultTemplateName))
			Expect(t.Entries).To(Equal(template.DefaultEntries()))
		})

		It("uses the configured name and entries when given", func() {
			testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
			configured := template.NewService(repo, testLogger, "Starter", []template.Entry{
				entry("Everything", 1000, false),
			})

			t, err := configured.ProvisionDefault(ctx, "user-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(t.Name).To(Equal("Starter"))
			Expect(t.Entries).To(HaveLen(1))
			Expect(configured.DefaultName()).To(Equal("Starter"))
		})

		It("returns the winner's copy after losing a create race", func() {
			first, err := service.ProvisionDefault(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())

			second, err := service.ProvisionDefault(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Name).To(Equal(first.Name))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("propagates unexpected create failures", func() {
			repo.createErr = errors.New("store unavailable")

			_, err := service.ProvisionDefault(ctx, "user-1")

			Expect(err).To(MatchError("store unavailable"))
		})
	})

	Describe("catalog methods", func() {
		It("resolves entries for budget generation", func() {
			_, err := service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name:       "Monthly",
				Categories: []template.Entry{entry("Food", 500, true)},
			})
			Expect(err).NotTo(HaveOccurred())

			entries, err := service.Categories(ctx, "user-1", "Monthly")

			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Category).To(Equal("Food"))
		})

		It("reports template ownership per user", func() {
			hasAny, err := service.HasAny(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(hasAny).To(BeFalse())

			_, err = service.CreateTemplate(ctx, "user-1", template.CreateTemplateDTO{
				Name:       "Monthly",
				Categories: []template.Entry{entry("Food", 500, false)},
			})
			Expect(err).NotTo(HaveOccurred())

			hasAny, err = service.HasAny(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(hasAny).To(BeTrue())

			hasAny, err = service.HasAny(ctx, "user-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(hasAny).To(BeFalse())
		})
	})
})
