package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints. It is mounted under a trip,
// so every route already has a {tripId} and a caller role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(trip.Allow(trip.RoleEditor))
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Create handles POST /trips/{tripId}/expenses
// @Summary      Create a new expense
// @Description  Create an expense and split it with equal, exact, percentage or shares mode
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.CreateExpense(r.Context(), chi.URLParam(r, "tripId"), userID, &req)
	if err != nil {
		h.fail(w, err, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, result.ToResponse())
}

// GetByID handles GET /trips/{tripId}/expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its splits
// @Tags         expenses
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetExpense(r.Context(), chi.URLParam(r, "tripId"), id)
	if err != nil {
		h.fail(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}

// List handles GET /trips/{tripId}/expenses
// @Summary      List trip expenses
// @Description  Get a paginated list of a trip's expenses, newest first
// @Tags         expenses
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /trips/{tripId}/expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, total, err := h.service.ListExpenses(r.Context(), chi.URLParam(r, "tripId"), page, perPage)
	if err != nil {
		h.fail(w, err, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.NewMeta(page, perPage, total))
}

// Update handles PATCH /trips/{tripId}/expenses/{id}
// @Summary      Update an expense
// @Description  Edit expense fields. Splits are recomputed only when member_ids is supplied.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        id path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.UpdateExpense(r.Context(), chi.URLParam(r, "tripId"), userID, id, &req)
	if err != nil {
		h.fail(w, err, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}

// Delete handles DELETE /trips/{tripId}/expenses/{id}
// @Summary      Delete an expense
// @Description  Delete an expense and its splits
// @Tags         expenses
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /trips/{tripId}/expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.DeleteExpense(r.Context(), chi.URLParam(r, "tripId"), userID, id); err != nil {
		h.fail(w, err, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

func expenseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return "", false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, split.ErrInvalidSplit),
		errors.Is(err, ErrNotTripMember),
		errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrTitleTooLong),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrMembersRequired),
		errors.Is(err, ErrPayerRequired):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		response.InternalError(w, msg)
	}
}
