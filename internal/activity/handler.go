package activity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/response"
)

// Handler handles HTTP requests for the activity log
type Handler struct {
	service *Service
}

// NewHandler creates a new activity handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for activity endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// ItemResponse represents the response for an activity item
type ItemResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Action     Action         `json:"action"`
	EntityType *string        `json:"entity_type,omitempty"`
	EntityID   *string        `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  string         `json:"created_at"`
}

func toResponse(i *Item) *ItemResponse {
	return &ItemResponse{
		ID:         i.ID,
		UserID:     i.UserID,
		Action:     i.Action,
		EntityType: i.EntityType,
		EntityID:   i.EntityID,
		Metadata:   i.Metadata,
		CreatedAt:  i.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /trips/{tripId}/activity
// @Summary      List trip activity
// @Description  Most recent activity of a trip, newest first
// @Tags         activity
// @Produce      json
// @Param        tripId path string true "Trip ID"
// @Param        limit query int false "Maximum items (max 200)" default(50)
// @Success      200 {object} response.APIResponse{data=[]ItemResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/activity [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.List(r.Context(), tripID, limit)
	if err != nil {
		response.InternalError(w, "Failed to list activity")
		return
	}

	resp := make([]*ItemResponse, len(items))
	for i, item := range items {
		resp[i] = toResponse(item)
	}

	response.JSON(w, http.StatusOK, resp)
}
