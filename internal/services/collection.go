package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/hydra-collections/internal/ability"
	"github.com/dimitrije/hydra-collections/internal/logger"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/store"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

var (
	ErrInvalidMember    = errors.New("invalid member")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// Publisher receives collection changes after they are persisted.
type Publisher interface {
	BroadcastCollectionUpdate(c *models.Collection, updatedBy uuid.UUID)
	BroadcastCollectionDeleted(collectionID, deletedBy uuid.UUID)
}

type CollectionService struct {
	store  store.Store
	clock  clock.Clock
	logger *zap.Logger
	events Publisher
}

func NewCollectionService(s store.Store, clk clock.Clock, l *zap.Logger, events Publisher) *CollectionService {
	if clk == nil {
		clk = clock.WallClock
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &CollectionService{store: s, clock: clk, logger: l, events: events}
}

func (s *CollectionService) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// Create persists a new, empty collection deposited by actor.
func (s *CollectionService) Create(ctx context.Context, actor models.Principal, title, description string) (*models.Collection, error) {
	if actor.ID == uuid.Nil {
		return nil, ability.ErrForbidden
	}

	c := models.NewCollection(actor.ID)
	c.Title = title
	c.Description = description

	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}

	s.log(ctx).Info("collection created",
		zap.String("collection_id", c.ID.String()),
		zap.String("depositor", c.Depositor.String()),
	)
	return c, nil
}

// GetByID loads a collection without any permission check.
func (s *CollectionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	c, err := s.store.FindCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", id, err)
	}
	return c, nil
}

// Get loads a collection the actor may read.
func (s *CollectionService) Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Collection, error) {
	return s.load(ctx, actor, ability.Read, id)
}

// Abilities reports what actor may do with the collection.
func (s *CollectionService) Abilities(ctx context.Context, actor models.Principal, id uuid.UUID) (ability.Permissions, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return ability.Permissions{}, err
	}
	return ability.New(actor).For(c), nil
}

// Save stamps the modification time (and the upload time on first save)
// and persists c. The stamps reach c only when the write succeeds, so a
// failed save leaves the caller's value as it was.
func (s *CollectionService) Save(ctx context.Context, c *models.Collection) error {
	next := c.Clone()
	next.Touch(s.clock.Now())

	var err error
	if next.ID == uuid.Nil {
		err = s.store.CreateCollection(ctx, next)
	} else {
		err = s.store.SaveCollection(ctx, next)
	}
	if err != nil {
		s.log(ctx).Error("failed to save collection",
			zap.String("collection_id", c.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("save collection %s: %w", c.ID, err)
	}

	c.ID = next.ID
	c.DateUploaded = next.DateUploaded
	c.DateModified = next.DateModified
	return nil
}

// SetMembers replaces the membership of a collection with memberIDs, in order.
func (s *CollectionService) SetMembers(ctx context.Context, actor models.Principal, id uuid.UUID, memberIDs []uuid.UUID) (*models.Collection, error) {
	return s.mutate(ctx, actor, id, func(c *models.Collection) (bool, error) {
		members, err := s.resolveMembers(ctx, memberIDs)
		if err != nil {
			return false, err
		}
		c.SetMembers(members...)
		return true, nil
	})
}

func (s *CollectionService) AddMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error) {
	return s.mutate(ctx, actor, id, func(c *models.Collection) (bool, error) {
		members, err := s.resolveMembers(ctx, []uuid.UUID{memberID})
		if err != nil {
			return false, err
		}
		c.AddMember(members[0])
		return true, nil
	})
}

// RemoveMember drops the first occurrence of memberID. When the member is
// not in the collection nothing is written and the current state is returned.
func (s *CollectionService) RemoveMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error) {
	return s.mutate(ctx, actor, id, func(c *models.Collection) (bool, error) {
		return c.RemoveMember(models.MemberRef(memberID)), nil
	})
}

// Update edits the descriptive metadata. Nil fields are left alone.
func (s *CollectionService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, title, description *string) (*models.Collection, error) {
	if title == nil && description == nil {
		return nil, ErrNoFieldsToUpdate
	}

	return s.mutate(ctx, actor, id, func(c *models.Collection) (bool, error) {
		if title != nil {
			c.Title = *title
		}
		if description != nil {
			c.Description = *description
		}
		return true, nil
	})
}

// Members resolves the ordered member records of a collection.
func (s *CollectionService) Members(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.Member, error) {
	c, err := s.load(ctx, actor, ability.Read, id)
	if err != nil {
		return nil, err
	}

	members := make([]models.Member, 0, len(c.Members))
	for _, memberID := range c.Members {
		m, err := s.store.FindMember(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("find member %s: %w", memberID, err)
		}
		members = append(members, *m)
	}
	return members, nil
}

// Delete destroys the collection. Its members are left untouched.
func (s *CollectionService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, ability.Destroy, id); err != nil {
		return err
	}

	if err := s.store.DestroyCollection(ctx, id); err != nil {
		return fmt.Errorf("destroy collection %s: %w", id, err)
	}

	s.log(ctx).Info("collection deleted",
		zap.String("collection_id", id.String()),
		zap.String("deleted_by", actor.ID.String()),
	)
	if s.events != nil {
		s.events.BroadcastCollectionDeleted(id, actor.ID)
	}
	return nil
}

func (s *CollectionService) load(ctx context.Context, actor models.Principal, action ability.Action, id uuid.UUID) (*models.Collection, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ability.New(actor).Authorize(action, c); err != nil {
		return nil, err
	}
	return c, nil
}

// mutate loads the collection for editing, applies fn and saves when fn
// reports a change.
func (s *CollectionService) mutate(ctx context.Context, actor models.Principal, id uuid.UUID, fn func(c *models.Collection) (bool, error)) (*models.Collection, error) {
	c, err := s.load(ctx, actor, ability.Edit, id)
	if err != nil {
		return nil, err
	}

	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}

	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}

	s.log(ctx).Info("collection updated",
		zap.String("collection_id", c.ID.String()),
		zap.Int("members", len(c.Members)),
	)
	if s.events != nil {
		s.events.BroadcastCollectionUpdate(c, actor.ID)
	}
	return c, nil
}

// resolveMembers checks that every id names an existing member.
func (s *CollectionService) resolveMembers(ctx context.Context, ids []uuid.UUID) ([]models.Collectible, error) {
	members := make([]models.Collectible, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, fmt.Errorf("%w: nil id", ErrInvalidMember)
		}
		m, err := s.store.FindMember(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrObjectNotFound) {
				return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidMember, id)
			}
			return nil, fmt.Errorf("find member %s: %w", id, err)
		}
		members = append(members, m)
	}
	return members, nil
}
