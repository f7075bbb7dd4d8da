package memory

import (
	"context"
	"sort"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/template"
)

type TemplateRepository struct {
	store *Store
}

func NewTemplateRepository(store *Store) template.Repository {
	return &TemplateRepository{store: store}
}

func (r *TemplateRepository) Create(ctx context.Context, t *template.Template) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	partition, ok := r.store.templates[t.UserID]
	if !ok {
		partition = make(map[string]*template.Template)
		r.store.templates[t.UserID] = partition
	}
	if _, exists := partition[t.Name]; exists {
		return internal.ErrTemplateExists
	}
	partition[t.Name] = cloneTemplate(t)
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, userID, name string) (*template.Template, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.templates[userID][name]
	if !ok {
		return nil, internal.ErrTemplateNotFound
	}
	return cloneTemplate(t), nil
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]*template.Template, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]*template.Template, 0, len(r.store.templates[userID]))
	for _, t := range r.store.templates[userID] {
		rows = append(rows, cloneTemplate(t))
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

func (r *TemplateRepository) Replace(ctx context.Context, t *template.Template) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.templates[t.UserID][t.Name]; !ok {
		return internal.ErrTemplateNotFound
	}
	r.store.templates[t.UserID][t.Name] = cloneTemplate(t)
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.templates[userID][name]; !ok {
		return internal.ErrTemplateNotFound
	}
	delete(r.store.templates[userID], name)
	return nil
}

func (r *TemplateRepository) HasAny(ctx context.Context, userID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.templates[userID]) > 0, nil
}
