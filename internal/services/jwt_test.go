package services

import (
	"testing"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, nil)

	assert.NotNil(t, svc)
	assert.Equal(t, 15*time.Minute, svc.Expiry())
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, nil)
	principal := models.Principal{ID: uuid.New(), Email: "test@example.com"}

	token, err := svc.GenerateToken(principal)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, principal.ID, claims.UserID)
	assert.Equal(t, principal.Email, claims.Email)
	assert.Equal(t, "hydra-collections", claims.Issuer)
	assert.Equal(t, principal, claims.Principal())
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc1 := NewJWTService("secret-1", 15*time.Minute, nil)
	svc2 := NewJWTService("secret-2", 15*time.Minute, nil)

	token, err := svc1.GenerateToken(models.Principal{ID: uuid.New(), Email: "test@example.com"})
	require.NoError(t, err)

	_, err = svc2.ValidateAccessToken(token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewJWTService("test-secret", time.Minute, clk)

	token, err := svc.GenerateToken(models.Principal{ID: uuid.New(), Email: "test@example.com"})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)

	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_ValidateAccessToken_NoUserID(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, nil)

	token, err := svc.GenerateToken(models.Principal{Email: "anonymous@example.com"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)

	assert.Error(t, err)
}

func TestJWTService_ValidateAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)

	assert.Error(t, err)
}

func TestJWTService_ValidateAccessToken_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, nil)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"partial jwt", "eyJhbGciOiJIUzI1NiJ9."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tc.token)
			assert.Error(t, err)
		})
	}
}
