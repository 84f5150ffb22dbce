package budget

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler serves the budget view of a trip
type Handler struct {
	service *Service
}

// NewHandler creates a new budget handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for budget endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Report)
	return r
}

// Report handles GET /trips/{tripId}/budget
// @Summary      Trip budget
// @Description  Total spent against the trip budget with per-category totals
// @Tags         budget
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=Report}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/budget [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	report, err := h.service.TripReport(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		log.Error().Err(err).Str("trip_id", tripID).Msg("failed to build budget report")
		response.InternalError(w, "Failed to build budget report")
		return
	}

	response.JSON(w, http.StatusOK, report)
}
