package models

import "github.com/google/uuid"

// Principal is the identity a request acts as.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
