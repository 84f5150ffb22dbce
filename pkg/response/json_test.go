package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var body APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]string{"id": "trip-1"})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decode(t, rr)
	require.True(t, body.Success)
	require.Nil(t, body.Error)
	require.Equal(t, map[string]any{"id": "trip-1"}, body.Data)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"internal", InternalError, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unauthorized", Unauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden, http.StatusForbidden, "FORBIDDEN"},
		{"conflict", Conflict, http.StatusConflict, "CONFLICT"},
		{"unavailable", ServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			tt.write(rr, "boom")

			require.Equal(t, tt.status, rr.Code)
			body := decode(t, rr)
			require.False(t, body.Success)
			require.NotNil(t, body.Error)
			require.Equal(t, tt.code, body.Error.Code)
			require.Equal(t, "boom", body.Error.Message)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	require.Equal(t, &Meta{Page: 1, PerPage: 20, Total: 41, TotalPages: 3}, NewMeta(1, 20, 41))
	require.Equal(t, &Meta{Page: 2, PerPage: 10, Total: 0, TotalPages: 0}, NewMeta(2, 10, 0))
	require.Equal(t, 0, NewMeta(1, 0, 5).TotalPages)
}

func TestJSONWithMeta(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	JSONWithMeta(rr, http.StatusOK, []string{"a"}, NewMeta(1, 20, 1))

	body := decode(t, rr)
	require.True(t, body.Success)
	require.NotNil(t, body.Meta)
	require.Equal(t, 1, body.Meta.TotalPages)
}
