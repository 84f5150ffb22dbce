package balance

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler serves the derived balance views of a trip
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints. All of them are reads.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Balances)
	r.Get("/debts", h.Debts)
	r.Get("/summary", h.Summary)
	r.Get("/export.csv", h.Export)

	return r
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Balances, bool) {
	tripID := chi.URLParam(r, "tripId")
	balances, err := h.service.TripBalances(r.Context(), tripID)
	if err != nil {
		log.Error().Err(err).Str("trip_id", tripID).Msg("failed to compute balances")
		response.InternalError(w, "Failed to compute balances")
		return nil, false
	}
	return balances, true
}

// Balances handles GET /trips/{tripId}/balances
// @Summary      Trip balances
// @Description  Per-member debts by counterparty and net position. An empty object means no balances yet.
// @Tags         balances
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=map[string]Balance}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/balances [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, balances)
}

// Debts handles GET /trips/{tripId}/balances/debts
// @Summary      Outstanding debts
// @Description  Who owes whom, one entry per debtor and creditor pair
// @Tags         balances
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]Debt}
// @Router       /trips/{tripId}/balances/debts [get]
func (h *Handler) Debts(w http.ResponseWriter, r *http.Request) {
	balances, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, Debts(balances))
}

// Summary handles GET /trips/{tripId}/balances/summary
// @Summary      Balance summary
// @Description  Totals and settled-up status per member
// @Tags         balances
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]MemberSummary}
// @Router       /trips/{tripId}/balances/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	balances, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, Summarize(balances))
}

// Export handles GET /trips/{tripId}/balances/export.csv
// @Summary      Export balances
// @Description  Member summary and debts as CSV
// @Tags         balances
// @Produce      text/csv
// @Param        tripId path string true "Trip ID"
// @Success      200 {string} string "CSV report"
// @Router       /trips/{tripId}/balances/export.csv [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	balances, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s-balances.csv"`, chi.URLParam(r, "tripId")))
	w.WriteHeader(http.StatusOK)
	if err := WriteCSV(w, balances); err != nil {
		log.Error().Err(err).Msg("failed to write balance export")
	}
}
