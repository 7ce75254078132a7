package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/hydra-collections/internal/database"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var collectionColumns = []string{
	"id", "depositor", "title", "description", "date_uploaded", "date_modified", "members",
}

func setupPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewPostgres(db), mock
}

func TestPostgres_CreateCollection(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	now := time.Now()
	c := models.NewCollection(uuid.New())
	c.Touch(now)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs(pgxmock.AnyArg(), c.Depositor, "", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.CreateCollection(ctx, c)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateCollection_WithMembers(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	now := time.Now()
	c := models.NewCollection(uuid.New())
	c.ID = uuid.New()
	c.Touch(now)
	m1 := uuid.New()
	c.AddMember(models.MemberRef(m1))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs(c.ID, c.Depositor, "", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO collection_members`).
		WithArgs(c.ID, []uuid.UUID{m1}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.CreateCollection(ctx, c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindCollection(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()
	depositor := uuid.New()
	m1, m2 := uuid.New(), uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(collectionColumns).
		AddRow(id, depositor, "title", "description", now, now, []uuid.UUID{m1, m2})
	mock.ExpectQuery(`SELECT .+ FROM collections c WHERE c.id`).
		WithArgs(id).
		WillReturnRows(rows)

	c, err := s.FindCollection(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, depositor, c.Depositor)
	assert.Equal(t, "title", c.Title)
	assert.Equal(t, []uuid.UUID{m1, m2}, c.Members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindCollection_NotFound(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM collections c WHERE c.id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.FindCollection(ctx, id)

	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveCollection(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	now := time.Now()
	c := models.NewCollection(uuid.New())
	c.ID = uuid.New()
	c.Title = "title"
	c.Touch(now)
	m1, m2 := uuid.New(), uuid.New()
	c.SetMembers(models.MemberRef(m1), models.MemberRef(m2))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("title", "", now, now, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM collection_members WHERE collection_id`).
		WithArgs(c.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO collection_members`).
		WithArgs(c.ID, []uuid.UUID{m1, m2}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, s.SaveCollection(ctx, c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveCollection_EmptyMembers(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	now := time.Now()
	c := models.NewCollection(uuid.New())
	c.ID = uuid.New()
	c.Touch(now)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("", "", now, now, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM collection_members WHERE collection_id`).
		WithArgs(c.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	require.NoError(t, s.SaveCollection(ctx, c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveCollection_NotFound(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	c := models.NewCollection(uuid.New())
	c.ID = uuid.New()
	c.Touch(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("", "", c.DateUploaded, c.DateModified, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := s.SaveCollection(ctx, c)

	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveCollection_UnknownMember(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	c := models.NewCollection(uuid.New())
	c.ID = uuid.New()
	c.Touch(time.Now())
	missing := uuid.New()
	c.AddMember(models.MemberRef(missing))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("", "", c.DateUploaded, c.DateModified, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM collection_members WHERE collection_id`).
		WithArgs(c.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO collection_members`).
		WithArgs(c.ID, []uuid.UUID{missing}).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	mock.ExpectRollback()

	err := s.SaveCollection(ctx, c)

	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DestroyCollection(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM collections WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DestroyCollection(ctx, id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DestroyCollection_NotFound(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM collections WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.DestroyCollection(ctx, id), ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateMember(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	m := &models.Member{Depositor: uuid.New(), Title: "file.pdf", CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO members`).
		WithArgs(pgxmock.AnyArg(), m.Depositor, "file.pdf", m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateMember(ctx, m))
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindMember(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()
	depositor := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "depositor", "title", "created_at"}).
		AddRow(id, depositor, "file.pdf", now)
	mock.ExpectQuery(`SELECT .+ FROM members WHERE id`).
		WithArgs(id).
		WillReturnRows(rows)

	m, err := s.FindMember(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	assert.Equal(t, "file.pdf", m.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindMember_NotFound(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM members WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.FindMember(ctx, id)

	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DestroyMember(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()

	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections SET date_modified`).
		WithArgs(id, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(`DELETE FROM members WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, s.DestroyMember(ctx, id, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DestroyMember_NotFound(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections SET date_modified`).
		WithArgs(id, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM members WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := s.DestroyMember(ctx, id, now)

	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CollectionsContaining(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	memberID := uuid.New()
	c1, c2 := uuid.New(), uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(collectionColumns).
		AddRow(c1, uuid.New(), "first", "", now, now, []uuid.UUID{memberID}).
		AddRow(c2, uuid.New(), "second", "", now, now, []uuid.UUID{uuid.New(), memberID})
	mock.ExpectQuery(`SELECT .+ FROM collections c\s+WHERE EXISTS`).
		WithArgs(memberID).
		WillReturnRows(rows)

	cols, err := s.CollectionsContaining(ctx, memberID)

	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, c1, cols[0].ID)
	assert.Equal(t, c2, cols[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CollectionsContaining_QueryError(t *testing.T) {
	s, mock := setupPostgres(t)
	ctx := context.Background()
	memberID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM collections c\s+WHERE EXISTS`).
		WithArgs(memberID).
		WillReturnError(errors.New("connection refused"))

	_, err := s.CollectionsContaining(ctx, memberID)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
