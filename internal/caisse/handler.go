package caisse

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gescom-app/gescom/internal/platform/httpx"
	"github.com/gescom-app/gescom/internal/shared"
)

// Handler serves caisse endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	stats   *Stats
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, stats *Stats) *Handler {
	return &Handler{logger: logger, service: service, stats: stats}
}

// MountRoutes attaches caisse routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ventes", h.List)
	r.Get("/ventes/order/{orderID}", h.ShowByOrder)
	r.Get("/stats/daily", h.DailyStats)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{}
	if from := parseDate(r.URL.Query().Get("from")); from != nil {
		req.From = from
	}
	if to := parseDate(r.URL.Query().Get("to")); to != nil {
		req.To = to
	}
	req.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	req.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	ventes, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list ventes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ventes":     ventes,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) ShowByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	vente, err := h.service.GetByOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vente)
}

func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	to := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -30)
	if v := parseDate(r.URL.Query().Get("from")); v != nil {
		from = *v
	}
	if v := parseDate(r.URL.Query().Get("to")); v != nil {
		to = *v
	}
	if !from.Before(to) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be before to")
		return
	}

	totals, err := h.stats.Daily(r.Context(), from, to)
	if err != nil {
		h.logger.Error("daily stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"days": totals})
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
