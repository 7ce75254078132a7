package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := jwtSvc.GenerateToken(models.Principal{ID: userID, Email: email})
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app http.Handler, jwtSvc *services.JWTService, principal models.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, jwtSvc, principal.ID, principal.Email))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)
	return rec
}

func testPrincipal() models.Principal {
	return models.Principal{ID: uuid.New(), Email: "test@example.com"}
}
