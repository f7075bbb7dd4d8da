package analysis

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/transport"
	"github.com/frahmantamala/envelope-budget/pkg/logger"
)

type ServiceAPI interface {
	GetAnalysis(ctx context.Context, userID, templateName, m string) (*Result, error)
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

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == "" {
		h.Logger.Error("GetAnalysis: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	templateName := r.URL.Query().Get("template")
	m := r.URL.Query().Get("month")

	result, err := h.Service.GetAnalysis(r.Context(), userID, templateName, m)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"template_name": templateName,
		"month":         m,
		"categories":    result.Categories,
		"summary":       result.Summary,
	})
}
