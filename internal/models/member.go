package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is an independently stored object that may belong to any number of
// collections. Which collections contain it is always looked up, never stored
// here.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Depositor uuid.UUID `json:"depositor"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Member) MemberID() uuid.UUID {
	return m.ID
}

func (m *Member) DepositorID() uuid.UUID {
	if m == nil {
		return uuid.Nil
	}
	return m.Depositor
}

// MemberRef lets a bare identifier stand in for a loaded member.
type MemberRef uuid.UUID

func (r MemberRef) MemberID() uuid.UUID {
	return uuid.UUID(r)
}
