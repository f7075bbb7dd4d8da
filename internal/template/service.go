package template

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
)

// Repository defines the data access methods for budget templates.
type Repository interface {
	Create(ctx context.Context, t *Template) error
	Get(ctx context.Context, userID, name string) (*Template, error)
	List(ctx context.Context, userID string) ([]*Template, error)
	Replace(ctx context.Context, t *Template) error
	Delete(ctx context.Context, userID, name string) error
	HasAny(ctx context.Context, userID string) (bool, error)
}

// Service is the template catalog. It owns the default-template preset; the
// budget engine only triggers provisioning and never carries preset content.
type Service struct {
	repo           Repository
	logger         *slog.Logger
	defaultName    string
	defaultEntries []Entry
}

// NewService builds the catalog. Empty defaultName or defaultEntries fall
// back to the built-in sentinel and preset.
func NewService(repo Repository, logger *slog.Logger, defaultName string, defaultEntries []Entry) *Service {
	if defaultName == "" {
		defaultName = DefaultTemplateName
	}
	if len(defaultEntries) == 0 {
		defaultEntries = DefaultEntries()
	}
	return &Service{
		repo:           repo,
		logger:         logger,
		defaultName:    defaultName,
		defaultEntries: defaultEntries,
	}
}

func (s *Service) DefaultName() string {
	return s.defaultName
}

// CreateTemplate stores a new named template for the user.
func (s *Service) CreateTemplate(ctx context.Context, userID string, dto CreateTemplateDTO) (*Template, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("template validation failed", "error", appErr, "user_id", userID)
		return nil, appErr
	}

	now := time.Now()
	t := &Template{
		UserID:    userID,
		Name:      dto.Name,
		Entries:   dto.Categories,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create template", "error", err, "user_id", userID, "template", dto.Name)
		return nil, err
	}

	s.logger.Info("template created", "user_id", userID, "template", t.Name, "categories", len(t.Entries))
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, userID string) ([]*Template, error) {
	templates, err := s.repo.List(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list templates", "error", err, "user_id", userID)
		return nil, err
	}
	return templates, nil
}

func (s *Service) GetTemplate(ctx context.Context, userID, name string) (*Template, error) {
	t, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ReplaceTemplate swaps the full entry list of an existing template.
// Budgets already generated from it keep their copied amounts.
func (s *Service) ReplaceTemplate(ctx context.Context, userID, name string, dto ReplaceTemplateDTO) (*Template, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Error("template replace validation failed", "error", appErr, "user_id", userID, "template", name)
		return nil, appErr
	}

	existing, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	existing.Entries = dto.Categories
	existing.UpdatedAt = time.Now()

	if err := s.repo.Replace(ctx, existing); err != nil {
		s.logger.Error("failed to replace template", "error", err, "user_id", userID, "template", name)
		return nil, err
	}

	s.logger.Info("template replaced", "user_id", userID, "template", name, "categories", len(dto.Categories))
	return existing, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, userID, name string) error {
	if err := s.repo.Delete(ctx, userID, name); err != nil {
		s.logger.Error("failed to delete template", "error", err, "user_id", userID, "template", name)
		return err
	}

	s.logger.Info("template deleted", "user_id", userID, "template", name)
	return nil
}

// Categories resolves a template's entries for budget generation.
func (s *Service) Categories(ctx context.Context, userID, name string) ([]Entry, error) {
	t, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return t.Entries, nil
}

// HasAny reports whether the user owns any template at all.
func (s *Service) HasAny(ctx context.Context, userID string) (bool, error) {
	return s.repo.HasAny(ctx, userID)
}

// ProvisionDefault writes the preset under the sentinel name. A concurrent
// provision losing the create race falls back to reading the winner's copy.
func (s *Service) ProvisionDefault(ctx context.Context, userID string) (*Template, error) {
	now := time.Now()
	t := &Template{
		UserID:    userID,
		Name:      s.defaultName,
		Entries:   s.defaultEntries,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(ctx, t)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeTemplateExists {
			return s.repo.Get(ctx, userID, s.defaultName)
		}
		s.logger.Error("failed to provision default template", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("default template provisioned", "user_id", userID, "template", s.defaultName, "categories", len(t.Entries))
	return t, nil
}
