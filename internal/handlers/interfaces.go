package handlers

import (
	"context"

	"github.com/dimitrije/hydra-collections/internal/ability"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/sse"
	"github.com/google/uuid"
)

// CollectionServiceInterface defines the methods used by handlers from CollectionService
type CollectionServiceInterface interface {
	Create(ctx context.Context, actor models.Principal, title, description string) (*models.Collection, error)
	Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Collection, error)
	Abilities(ctx context.Context, actor models.Principal, id uuid.UUID) (ability.Permissions, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, title, description *string) (*models.Collection, error)
	SetMembers(ctx context.Context, actor models.Principal, id uuid.UUID, memberIDs []uuid.UUID) (*models.Collection, error)
	AddMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error)
	RemoveMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error)
	Members(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.Member, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
}

// MemberServiceInterface defines the methods used by handlers from MemberService
type MemberServiceInterface interface {
	Create(ctx context.Context, actor models.Principal, title string) (*models.Member, error)
	Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Member, error)
	Collections(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.CollectionRef, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	Subscribe(clientID string, userID, collectionID uuid.UUID) bool
	Unsubscribe(clientID string, userID, collectionID uuid.UUID) bool
}

// Pinger reports whether the object store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
