package budget

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/transport"
	"github.com/frahmantamala/envelope-budget/pkg/logger"
)

type ServiceAPI interface {
	GetOrCreateBudgets(ctx context.Context, userID, templateName, m string) ([]*EnvelopeBudget, error)
	ListBudgets(ctx context.Context, userID, templateName, m string) ([]*EnvelopeBudget, error)
	UpdateBudgetAmounts(ctx context.Context, userID string, dto UpdateBudgetAmountsDTO) ([]*EnvelopeBudget, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GenerateBudgets is the idempotent get-or-create entry point: repeat calls
// with the same body return the same rows.
func (h *Handler) GenerateBudgets(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == "" {
		h.Logger.Error("GenerateBudgets: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GenerateBudgetsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("GenerateBudgets: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budgets, err := h.Service.GetOrCreateBudgets(r.Context(), userID, dto.TemplateName, dto.Month)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"template_name": dto.TemplateName,
		"month":         dto.Month,
		"budgets":       ToResponseList(budgets),
	})
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == "" {
		h.Logger.Error("ListBudgets: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	templateName := r.URL.Query().Get("template")
	m := r.URL.Query().Get("month")

	budgets, err := h.Service.ListBudgets(r.Context(), userID, templateName, m)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"template_name": templateName,
		"month":         m,
		"budgets":       ToResponseList(budgets),
	})
}

func (h *Handler) UpdateBudgetAmounts(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == "" {
		h.Logger.Error("UpdateBudgetAmounts: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateBudgetAmountsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateBudgetAmounts: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budgets, err := h.Service.UpdateBudgetAmounts(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"template_name": dto.TemplateName,
		"month":         dto.Month,
		"budgets":       ToResponseList(budgets),
	})
}
