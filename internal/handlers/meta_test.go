package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/hydra-collections/internal/middleware"
	"github.com/dimitrije/hydra-collections/internal/testutil"
	"github.com/dimitrije/hydra-collections/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMetaHandler_Health(t *testing.T) {
	testCases := []struct {
		name    string
		pingErr error
		status  int
		body    string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pinger := new(testutil.MockPinger)
			pinger.On("Ping", mock.Anything).Return(tc.pingErr)
			handler := NewMetaHandler(pinger)

			app := drift.New()
			app.Get("/health", handler.Health)

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
			pinger.AssertExpectations(t)
		})
	}
}

func TestMetaHandler_Terms(t *testing.T) {
	handler := NewMetaHandler(new(testutil.MockPinger))

	app := drift.New()
	app.Get("/terms", handler.Terms)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/terms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TermsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []string{"title", "description", "date_uploaded", "date_modified"}, response.Display)
	assert.Equal(t, []string{"title", "description"}, response.Editing)
}

func TestMetaHandler_Me(t *testing.T) {
	handler := NewMetaHandler(new(testutil.MockPinger))
	jwtSvc := testutil.TestJWTService()
	principal := testPrincipal()

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/me", handler.Me)

	rec := doRequest(t, app, jwtSvc, principal, http.MethodGet, "/me", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.PrincipalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, principal.ID, response.ID)
	assert.Equal(t, principal.Email, response.Email)
}
