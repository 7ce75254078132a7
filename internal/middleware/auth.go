package middleware

import (
	"errors"
	"strings"

	"github.com/dimitrije/hydra-collections/internal/logger"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

const PrincipalKey = "principal"

var (
	errMissingHeader = errors.New("missing authorization header")
	errHeaderFormat  = errors.New("invalid authorization header format")
)

// Auth resolves the bearer token into the calling principal and stores it on
// the context for GetPrincipal. Requests without a valid token stop here.
func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Unauthorized(err.Error())
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("rejected bearer token", zap.Error(err))
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(PrincipalKey, claims.Principal())
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", errHeaderFormat
	}
	return token, nil
}

// GetPrincipal returns the authenticated caller. The zero Principal (ID
// uuid.Nil) means the request did not pass through Auth.
func GetPrincipal(c *drift.Context) models.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}
