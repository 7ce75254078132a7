package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/hydra-collections/internal/ability"
	"github.com/dimitrije/hydra-collections/internal/logger"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/store"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

type MemberService struct {
	store  store.Store
	clock  clock.Clock
	logger *zap.Logger
	events Publisher
}

func NewMemberService(s store.Store, clk clock.Clock, l *zap.Logger, events Publisher) *MemberService {
	if clk == nil {
		clk = clock.WallClock
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &MemberService{store: s, clock: clk, logger: l, events: events}
}

func (s *MemberService) Create(ctx context.Context, actor models.Principal, title string) (*models.Member, error) {
	if actor.ID == uuid.Nil {
		return nil, ability.ErrForbidden
	}

	m := &models.Member{
		Depositor: actor.ID,
		Title:     title,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	logger.FromContextOr(ctx, s.logger).Info("member created",
		zap.String("member_id", m.ID.String()),
		zap.String("depositor", m.Depositor.String()),
	)
	return m, nil
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	m, err := s.store.FindMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find member %s: %w", id, err)
	}
	return m, nil
}

func (s *MemberService) Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Member, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ability.New(actor).Authorize(ability.Read, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Collections is the member's back-reference: every collection listing it
// right now, oldest upload first. It is queried fresh on each call. The
// caller must be able to read the member, and only references are returned
// because the collections themselves may belong to someone else.
func (s *MemberService) Collections(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.CollectionRef, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	collections, err := s.store.CollectionsContaining(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("collections containing %s: %w", id, err)
	}

	refs := make([]models.CollectionRef, len(collections))
	for i := range collections {
		refs[i] = collections[i].Ref()
	}
	return refs, nil
}

// Delete destroys the member. Collections that listed it lose the entry, are
// stamped modified, and their watchers are told about the new membership.
// Only destroy on the member is required, not edit on those collections.
func (s *MemberService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ability.New(actor).Authorize(ability.Destroy, m); err != nil {
		return err
	}

	affected, err := s.store.CollectionsContaining(ctx, id)
	if err != nil {
		return fmt.Errorf("collections containing %s: %w", id, err)
	}

	if err := s.store.DestroyMember(ctx, id, s.clock.Now()); err != nil {
		return fmt.Errorf("destroy member %s: %w", id, err)
	}

	log := logger.FromContextOr(ctx, s.logger)
	log.Info("member deleted",
		zap.String("member_id", id.String()),
		zap.Int("collections", len(affected)),
	)

	if s.events == nil {
		return nil
	}
	for _, c := range affected {
		current, err := s.store.FindCollection(ctx, c.ID)
		if err != nil {
			log.Warn("failed to reload collection after member delete",
				zap.String("collection_id", c.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.events.BroadcastCollectionUpdate(current, actor.ID)
	}
	return nil
}
