package trip

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for trip operations
type Handler struct {
	service *Service
}

// NewHandler creates a new trip handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for trip endpoints. Everything below /{tripId}
// requires membership; mount adds the per-trip feature routers there.
func (h *Handler) Routes(mount func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{tripId}", func(r chi.Router) {
		r.Use(h.service.Require(RoleViewer))

		r.Get("/", h.GetByID)
		r.With(Allow(RoleOwner)).Patch("/", h.Update)
		r.With(Allow(RoleOwner)).Delete("/", h.Delete)

		// Member management
		r.Get("/members", h.ListMembers)
		r.With(Allow(RoleOwner)).Post("/members", h.AddMember)
		r.With(Allow(RoleOwner)).Put("/members/{userId}", h.UpdateMember)
		r.With(Allow(RoleOwner)).Delete("/members/{userId}", h.RemoveMember)

		if mount != nil {
			mount(r)
		}
	})

	return r
}

// Create handles POST /trips
// @Summary      Create a new trip
// @Description  Create a trip and add the creator as owner
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        request body CreateTripRequest true "Trip creation request"
// @Success      201 {object} response.APIResponse{data=TripResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /trips [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.fail(w, err, "Failed to create trip")
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// List handles GET /trips
// @Summary      List my trips
// @Description  Get a paginated list of the trips the caller belongs to
// @Tags         trips
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]TripResponse}
// @Router       /trips [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	trips, total, err := h.service.ListForUser(r.Context(), userID, page, perPage)
	if err != nil {
		h.fail(w, err, "Failed to list trips")
		return
	}

	resp := make([]*TripResponse, len(trips))
	for i, t := range trips {
		resp[i] = t.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.NewMeta(page, perPage, total))
}

// GetByID handles GET /trips/{tripId}
// @Summary      Get trip by ID
// @Description  Get a trip with all its members
// @Tags         trips
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=TripResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	t, members, err := h.service.GetWithMembers(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		h.fail(w, err, "Failed to get trip")
		return
	}

	resp := t.ToResponse()
	resp.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		resp.Members[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// Update handles PATCH /trips/{tripId}
// @Summary      Update a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        request body UpdateTripRequest true "Trip update request"
// @Success      200 {object} response.APIResponse{data=TripResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "tripId"), &req)
	if err != nil {
		h.fail(w, err, "Failed to update trip")
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Delete handles DELETE /trips/{tripId}
// @Summary      Delete a trip
// @Tags         trips
// @Param        tripId path string true "Trip ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "tripId")); err != nil {
		h.fail(w, err, "Failed to delete trip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /trips/{tripId}/members
// @Summary      List trip members
// @Tags         members
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Router       /trips/{tripId}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.Members(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		h.fail(w, err, "Failed to list members")
		return
	}

	resp := make([]*MemberResponse, len(members))
	for i, m := range members {
		resp[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// AddMember handles POST /trips/{tripId}/members
// @Summary      Add a member
// @Description  Add a user to the trip; role defaults to viewer
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /trips/{tripId}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.AddMember(r.Context(), chi.URLParam(r, "tripId"), actorID, &req)
	if err != nil {
		h.fail(w, err, "Failed to add member")
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// UpdateMember handles PUT /trips/{tripId}/members/{userId}
// @Summary      Change a member's role
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        userId path string true "User ID"
// @Param        request body UpdateMemberRequest true "New role"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/members/{userId} [put]
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.UpdateMemberRole(r.Context(), chi.URLParam(r, "tripId"), actorID, chi.URLParam(r, "userId"), &req)
	if err != nil {
		h.fail(w, err, "Failed to update member")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// RemoveMember handles DELETE /trips/{tripId}/members/{userId}
// @Summary      Remove a member
// @Tags         members
// @Param        tripId path string true "Trip ID"
// @Param        userId path string true "User ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	if err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "tripId"), actorID, chi.URLParam(r, "userId")); err != nil {
		h.fail(w, err, "Failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrInvalidCurrency), errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrDateRange), errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrUserIDRequired), errors.Is(err, ErrLastOwner),
		errors.Is(err, ErrInvalidBudget):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrMemberAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrTripNotFound), errors.Is(err, ErrMemberNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrInsufficientRole):
		response.Forbidden(w, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		response.InternalError(w, msg)
	}
}
