package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCollectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type UpdateCollectionRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SetMembersRequest replaces a collection's membership; order is kept.
type SetMembersRequest struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
}

type CollectionResponse struct {
	ID           uuid.UUID   `json:"id"`
	Depositor    uuid.UUID   `json:"depositor"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Members      []uuid.UUID `json:"members"`
	DateUploaded time.Time   `json:"date_uploaded"`
	DateModified time.Time   `json:"date_modified"`
}

// CollectionRefResponse is how a collection appears in a member's
// back-references.
type CollectionRefResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	DateUploaded time.Time `json:"date_uploaded"`
	DateModified time.Time `json:"date_modified"`
}

type AbilitiesResponse struct {
	Read    bool `json:"read"`
	Edit    bool `json:"edit"`
	Destroy bool `json:"destroy"`
}

type TermsResponse struct {
	Display []string `json:"display"`
	Editing []string `json:"editing"`
}
