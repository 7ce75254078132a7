// Package store holds the object store that persists collections and members
// by identifier, plus decorators layered over any implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUnavailable    = errors.New("object store unavailable")
)

// Store persists collections and members. Writes are atomic and visible to
// the next read once the call returns.
type Store interface {
	CreateCollection(ctx context.Context, c *models.Collection) error
	FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	SaveCollection(ctx context.Context, c *models.Collection) error
	DestroyCollection(ctx context.Context, id uuid.UUID) error

	CreateMember(ctx context.Context, m *models.Member) error
	FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
	// DestroyMember deletes the member, drops it from every collection listing
	// it and stamps those collections modified at now.
	DestroyMember(ctx context.Context, id uuid.UUID, now time.Time) error

	// CollectionsContaining is the back-reference from a member to every
	// collection currently listing it, oldest upload first.
	CollectionsContaining(ctx context.Context, memberID uuid.UUID) ([]models.Collection, error)

	Ping(ctx context.Context) error
	Close()
}
