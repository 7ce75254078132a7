package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
)

type Memory struct {
	mu          sync.RWMutex
	collections map[uuid.UUID]*models.Collection
	members     map[uuid.UUID]*models.Member
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[uuid.UUID]*models.Collection),
		members:     make(map[uuid.UUID]*models.Member),
	}
}

func (s *Memory) CreateCollection(_ context.Context, c *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMembers(c.Members); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.collections[c.ID] = c.Clone()
	return nil
}

func (s *Memory) FindCollection(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return c.Clone(), nil
}

func (s *Memory) SaveCollection(_ context.Context, c *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[c.ID]
	if !ok {
		return ErrObjectNotFound
	}
	if err := s.checkMembers(c.Members); err != nil {
		return err
	}

	saved := c.Clone()
	saved.Depositor = existing.Depositor
	s.collections[c.ID] = saved
	return nil
}

func (s *Memory) DestroyCollection(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[id]; !ok {
		return ErrObjectNotFound
	}
	delete(s.collections, id)
	return nil
}

func (s *Memory) CreateMember(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

func (s *Memory) FindMember(_ context.Context, id uuid.UUID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Memory) DestroyMember(_ context.Context, id uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return ErrObjectNotFound
	}
	delete(s.members, id)
	for _, c := range s.collections {
		if !c.HasMember(id) {
			continue
		}
		c.Members = slices.DeleteFunc(c.Members, func(m uuid.UUID) bool { return m == id })
		c.DateModified = now
	}
	return nil
}

func (s *Memory) CollectionsContaining(_ context.Context, memberID uuid.UUID) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Collection
	for _, c := range s.collections {
		if c.HasMember(memberID) {
			out = append(out, *c.Clone())
		}
	}
	sortByUpload(out)
	return out, nil
}

func (s *Memory) Ping(context.Context) error { return nil }

func (s *Memory) Close() {}

func (s *Memory) checkMembers(ids []uuid.UUID) error {
	for _, id := range ids {
		if _, ok := s.members[id]; !ok {
			return ErrObjectNotFound
		}
	}
	return nil
}

func sortByUpload(cols []models.Collection) {
	sort.SliceStable(cols, func(i, j int) bool {
		if cols[i].DateUploaded.Equal(cols[j].DateUploaded) {
			return cols[i].ID.String() < cols[j].ID.String()
		}
		return cols[i].DateUploaded.Before(cols[j].DateUploaded)
	})
}
