package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints. Settlements cannot be
// edited or deleted once recorded.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(trip.Allow(trip.RoleEditor)).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// Create handles POST /trips/{tripId}/settlements
// @Summary      Record a settlement
// @Description  Record that one member paid another outside the app. Currency defaults to the configured default.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        request body CreateSettlementRequest true "Settlement"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	st, err := h.service.Record(r.Context(), chi.URLParam(r, "tripId"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrToUserRequired), errors.Is(err, ErrSelfSettlement),
			errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidCurrency),
			errors.Is(err, ErrMethodTooLong), errors.Is(err, ErrNotTripMember):
			response.BadRequest(w, err.Error())
		default:
			log.Error().Err(err).Msg("failed to record settlement")
			response.InternalError(w, "Failed to record settlement")
		}
		return
	}

	response.JSON(w, http.StatusCreated, st.ToResponse())
}

// List handles GET /trips/{tripId}/settlements
// @Summary      List settlements
// @Description  All settlements of a trip in recording order
// @Tags         settlements
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /trips/{tripId}/settlements [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.service.List(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list settlements")
		response.InternalError(w, "Failed to list settlements")
		return
	}

	resp := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		resp[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /trips/{tripId}/settlements/{id}
// @Summary      Get settlement by ID
// @Tags         settlements
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        id path string true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/settlements/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	st, err := h.service.Get(r.Context(), chi.URLParam(r, "tripId"), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		log.Error().Err(err).Msg("failed to get settlement")
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, st.ToResponse())
}
