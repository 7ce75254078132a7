package services

import (
	"fmt"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

const tokenIssuer = "hydra-collections"

// JWTService validates the bearer tokens that identify a principal. Tokens
// are issued elsewhere; GenerateToken exists for tooling and tests.
type JWTService struct {
	secret []byte
	expiry time.Duration
	clock  clock.Clock
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() models.Principal {
	return models.Principal{ID: c.UserID, Email: c.Email}
}

func NewJWTService(secret string, expiry time.Duration, clk clock.Clock) *JWTService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		clock:  clk,
	}
}

func (s *JWTService) GenerateToken(principal models.Principal) (string, error) {
	now := s.clock.Now()

	claims := Claims{
		UserID: principal.ID,
		Email:  principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   principal.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}

func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}
