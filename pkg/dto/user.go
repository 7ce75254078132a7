package dto

import "github.com/google/uuid"

// PrincipalResponse describes the caller identified by the bearer token.
type PrincipalResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
