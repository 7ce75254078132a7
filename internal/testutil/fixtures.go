package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/hydra-collections/internal/database"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateMember inserts a member deposited by depositor
func (f *Fixtures) CreateMember(t *testing.T, depositor uuid.UUID, opts ...MemberOption) *models.Member {
	t.Helper()
	f.counter++

	member := &models.Member{
		ID:        uuid.New(),
		Depositor: depositor,
		Title:     fmt.Sprintf("file-%d.pdf", f.counter),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	for _, opt := range opts {
		opt(member)
	}

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO members (id, depositor, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, member.ID, member.Depositor, member.Title, member.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	return member
}

// MemberOption configures a test member
type MemberOption func(*models.Member)

// WithMemberTitle sets the member's title
func WithMemberTitle(title string) MemberOption {
	return func(m *models.Member) {
		m.Title = title
	}
}

// CreateCollection inserts a collection deposited by depositor holding members
// in the given order
func (f *Fixtures) CreateCollection(t *testing.T, depositor uuid.UUID, members ...*models.Member) *models.Collection {
	t.Helper()
	f.counter++
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	col := models.NewCollection(depositor)
	col.ID = uuid.New()
	col.Title = fmt.Sprintf("Collection %d", f.counter)
	col.Touch(now)

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO collections (id, depositor, title, description, date_uploaded, date_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, col.ID, col.Depositor, col.Title, col.Description, col.DateUploaded, col.DateModified)
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}

	for i, m := range members {
		_, err := f.db.Pool.Exec(ctx, `
			INSERT INTO collection_members (collection_id, member_id, position)
			VALUES ($1, $2, $3)
		`, col.ID, m.ID, i+1)
		if err != nil {
			t.Fatalf("failed to add collection member: %v", err)
		}
		col.AddMember(m)
	}

	return col
}
