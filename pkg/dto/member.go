package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMemberRequest struct {
	Title string `json:"title"`
}

type MemberResponse struct {
	ID        uuid.UUID `json:"id"`
	Depositor uuid.UUID `json:"depositor"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
