package store

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	newMember := func(t *testing.T, s Store) *models.Member {
		t.Helper()
		m := &models.Member{Depositor: uuid.New(), Title: "file", CreatedAt: base}
		require.NoError(t, s.CreateMember(ctx, m))
		require.NotEqual(t, uuid.Nil, m.ID)
		return m
	}

	newCollection := func(t *testing.T, s Store, uploaded time.Time) *models.Collection {
		t.Helper()
		c := models.NewCollection(uuid.New())
		c.Touch(uploaded)
		require.NoError(t, s.CreateCollection(ctx, c))
		require.NotEqual(t, uuid.Nil, c.ID)
		return c
	}

	t.Run("find missing collection", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindCollection(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("find missing member", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindMember(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("new collection round trips empty", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)

		found, err := s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Depositor, found.Depositor)
		assert.Empty(t, found.Members)
		assert.True(t, base.Equal(found.DateUploaded))
	})

	t.Run("members keep order across saves", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		m1, m2, m3 := newMember(t, s), newMember(t, s), newMember(t, s)

		c.SetMembers(m2, m1)
		require.NoError(t, s.SaveCollection(ctx, c))
		found, err := s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{m2.ID, m1.ID}, found.Members)

		found.AddMember(m3)
		require.NoError(t, s.SaveCollection(ctx, found))
		found, err = s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{m2.ID, m1.ID, m3.ID}, found.Members)
	})

	t.Run("metadata saved and depositor kept", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		original := c.Depositor

		c.Title = "title"
		c.Description = "description"
		c.Depositor = uuid.New()
		c.Touch(base.Add(time.Hour))
		require.NoError(t, s.SaveCollection(ctx, c))

		found, err := s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "title", found.Title)
		assert.Equal(t, "description", found.Description)
		assert.Equal(t, original, found.Depositor)
		assert.True(t, base.Equal(found.DateUploaded))
		assert.True(t, base.Add(time.Hour).Equal(found.DateModified))
	})

	t.Run("save with unknown member writes nothing", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		m1 := newMember(t, s)
		c.SetMembers(m1)
		require.NoError(t, s.SaveCollection(ctx, c))

		c.AddMember(models.MemberRef(uuid.New()))
		c.Title = "changed"
		err := s.SaveCollection(ctx, c)
		assert.ErrorIs(t, err, ErrObjectNotFound)

		found, err := s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{m1.ID}, found.Members)
		assert.Empty(t, found.Title)
	})

	t.Run("save missing collection", func(t *testing.T) {
		s := newStore(t)
		c := models.NewCollection(uuid.New())
		c.ID = uuid.New()
		c.Touch(base)
		assert.ErrorIs(t, s.SaveCollection(ctx, c), ErrObjectNotFound)
	})

	t.Run("back-references follow membership", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		m1, m2 := newMember(t, s), newMember(t, s)

		c.SetMembers(m1, m2)
		require.NoError(t, s.SaveCollection(ctx, c))

		cols, err := s.CollectionsContaining(ctx, m1.ID)
		require.NoError(t, err)
		require.Len(t, cols, 1)
		assert.Equal(t, c.ID, cols[0].ID)

		c.RemoveMember(m1)
		require.NoError(t, s.SaveCollection(ctx, c))

		cols, err = s.CollectionsContaining(ctx, m1.ID)
		require.NoError(t, err)
		assert.Empty(t, cols)

		cols, err = s.CollectionsContaining(ctx, m2.ID)
		require.NoError(t, err)
		require.Len(t, cols, 1)
		assert.Equal(t, c.ID, cols[0].ID)

		_, err = s.FindMember(ctx, m1.ID)
		assert.NoError(t, err)
		_, err = s.FindMember(ctx, m2.ID)
		assert.NoError(t, err)
	})

	t.Run("back-references ordered by upload", func(t *testing.T) {
		s := newStore(t)
		later := newCollection(t, s, base.Add(time.Hour))
		earlier := newCollection(t, s, base)
		m := newMember(t, s)

		for _, c := range []*models.Collection{later, earlier} {
			c.AddMember(m)
			require.NoError(t, s.SaveCollection(ctx, c))
		}

		cols, err := s.CollectionsContaining(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, earlier.ID, cols[0].ID)
		assert.Equal(t, later.ID, cols[1].ID)
	})

	t.Run("destroy collection keeps members", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		m1, m2 := newMember(t, s), newMember(t, s)
		c.SetMembers(m1, m2)
		require.NoError(t, s.SaveCollection(ctx, c))

		require.NoError(t, s.DestroyCollection(ctx, c.ID))

		_, err := s.FindCollection(ctx, c.ID)
		assert.ErrorIs(t, err, ErrObjectNotFound)
		_, err = s.FindMember(ctx, m1.ID)
		assert.NoError(t, err)
		_, err = s.FindMember(ctx, m2.ID)
		assert.NoError(t, err)

		cols, err := s.CollectionsContaining(ctx, m1.ID)
		require.NoError(t, err)
		assert.Empty(t, cols)
	})

	t.Run("destroy missing collection", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.DestroyCollection(ctx, uuid.New()), ErrObjectNotFound)
	})

	t.Run("destroy member leaves collections", func(t *testing.T) {
		s := newStore(t)
		c := newCollection(t, s, base)
		m1, m2 := newMember(t, s), newMember(t, s)
		c.SetMembers(m1, m2)
		require.NoError(t, s.SaveCollection(ctx, c))

		other := newCollection(t, s, base)
		other.SetMembers(m2)
		require.NoError(t, s.SaveCollection(ctx, other))

		removedAt := base.Add(2 * time.Hour)
		require.NoError(t, s.DestroyMember(ctx, m1.ID, removedAt))

		found, err := s.FindCollection(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{m2.ID}, found.Members)
		assert.True(t, removedAt.Equal(found.DateModified), "got %s", found.DateModified)
		assert.True(t, base.Equal(found.DateUploaded))

		untouched, err := s.FindCollection(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, base.Equal(untouched.DateModified))

		assert.ErrorIs(t, s.DestroyMember(ctx, m1.ID, removedAt), ErrObjectNotFound)
	})
}
