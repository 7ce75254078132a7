package testutil

import (
	"context"

	"github.com/dimitrije/hydra-collections/internal/ability"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCollectionService mocks the CollectionService
type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) Create(ctx context.Context, actor models.Principal, title, description string) (*models.Collection, error) {
	args := m.Called(ctx, actor, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Collection, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Abilities(ctx context.Context, actor models.Principal, id uuid.UUID) (ability.Permissions, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(ability.Permissions), args.Error(1)
}

func (m *MockCollectionService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, title, description *string) (*models.Collection, error) {
	args := m.Called(ctx, actor, id, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) SetMembers(ctx context.Context, actor models.Principal, id uuid.UUID, memberIDs []uuid.UUID) (*models.Collection, error) {
	args := m.Called(ctx, actor, id, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) AddMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error) {
	args := m.Called(ctx, actor, id, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) RemoveMember(ctx context.Context, actor models.Principal, id, memberID uuid.UUID) (*models.Collection, error) {
	args := m.Called(ctx, actor, id, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Members(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.Member, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockCollectionService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockMemberService mocks the MemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) Create(ctx context.Context, actor models.Principal, title string) (*models.Member, error) {
	args := m.Called(ctx, actor, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberService) Get(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Member, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberService) Collections(ctx context.Context, actor models.Principal, id uuid.UUID) ([]models.CollectionRef, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionRef), args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockSSEHub mocks the SSE hub
type MockSSEHub struct {
	mock.Mock
}

func (m *MockSSEHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Subscribe(clientID string, userID, collectionID uuid.UUID) bool {
	args := m.Called(clientID, userID, collectionID)
	return args.Bool(0)
}

func (m *MockSSEHub) Unsubscribe(clientID string, userID, collectionID uuid.UUID) bool {
	args := m.Called(clientID, userID, collectionID)
	return args.Bool(0)
}

// MockPinger mocks a store health check
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
