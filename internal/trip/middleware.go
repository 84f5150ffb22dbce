package trip

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

type roleKey struct{}

// RoleFromContext returns the caller's role on the trip in the URL
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleKey{}).(Role)
	return role, ok
}

// WithRole stores the caller's trip role in ctx
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// Require loads the caller's membership of the {tripId} trip and rejects the
// request unless their role is at least min. The role is stored for Allow.
func (s *Service) Require(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tripID := chi.URLParam(r, "tripId")
			if _, err := uuid.Parse(tripID); err != nil {
				response.NotFound(w, ErrTripNotFound.Error())
				return
			}

			userID, ok := middleware.GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			role, err := s.RequireRole(r.Context(), tripID, userID, min)
			switch {
			case err == nil:
			case errors.Is(err, ErrTripNotFound):
				response.NotFound(w, err.Error())
				return
			case errors.Is(err, ErrNotMember), errors.Is(err, ErrInsufficientRole):
				response.Forbidden(w, err.Error())
				return
			default:
				log.Error().Err(err).Str("trip_id", tripID).Msg("failed to check trip role")
				response.InternalError(w, "Failed to check trip membership")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// Allow rejects the request unless the role stored by Require is at least min.
// It does no I/O, so feature routers can guard single routes with it.
func Allow(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !role.AtLeast(min) {
				response.Forbidden(w, ErrInsufficientRole.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
