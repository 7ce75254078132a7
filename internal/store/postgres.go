package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/hydra-collections/internal/database"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

const selectCollection = `
	SELECT c.id, c.depositor, c.title, c.description, c.date_uploaded, c.date_modified,
	       COALESCE((
	           SELECT array_agg(cm.member_id ORDER BY cm.position)
	           FROM collection_members cm WHERE cm.collection_id = c.id
	       ), '{}') AS members
	FROM collections c`

type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateCollection(ctx context.Context, c *models.Collection) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO collections (id, depositor, title, description, date_uploaded, date_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Depositor, c.Title, c.Description, c.DateUploaded, c.DateModified)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := insertMembers(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var c models.Collection
	err := s.db.Pool.QueryRow(ctx, selectCollection+` WHERE c.id = $1`, id).Scan(
		&c.ID, &c.Depositor, &c.Title, &c.Description,
		&c.DateUploaded, &c.DateModified, &c.Members,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	if c.Members == nil {
		c.Members = []uuid.UUID{}
	}
	return &c, nil
}

// SaveCollection rewrites metadata and the whole ordered membership in one
// transaction. The depositor column is never updated.
func (s *Postgres) SaveCollection(ctx context.Context, c *models.Collection) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE collections
		SET title = $1, description = $2, date_uploaded = $3, date_modified = $4
		WHERE id = $5
	`, c.Title, c.Description, c.DateUploaded, c.DateModified, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrObjectNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM collection_members WHERE collection_id = $1`, c.ID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}

	if err := insertMembers(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) DestroyCollection(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrObjectNotFound
	}
	return nil
}

func (s *Postgres) CreateMember(ctx context.Context, m *models.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO members (id, depositor, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, m.ID, m.Depositor, m.Title, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func (s *Postgres) FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var m models.Member
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, depositor, title, created_at FROM members WHERE id = $1
	`, id).Scan(&m.ID, &m.Depositor, &m.Title, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &m, nil
}

// DestroyMember stamps the containing collections first; the membership rows
// then go with the member through the foreign key cascade.
func (s *Postgres) DestroyMember(ctx context.Context, id uuid.UUID, now time.Time) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE collections SET date_modified = $2
		WHERE id IN (SELECT collection_id FROM collection_members WHERE member_id = $1)
	`, id, now)
	if err != nil {
		return fmt.Errorf("failed to touch collections: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrObjectNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) CollectionsContaining(ctx context.Context, memberID uuid.UUID) ([]models.Collection, error) {
	rows, err := s.db.Pool.Query(ctx, selectCollection+`
		WHERE EXISTS (
			SELECT 1 FROM collection_members x
			WHERE x.collection_id = c.id AND x.member_id = $1
		)
		ORDER BY c.date_uploaded, c.id
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(
			&c.ID, &c.Depositor, &c.Title, &c.Description,
			&c.DateUploaded, &c.DateModified, &c.Members,
		); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

func (s *Postgres) Close() {
	s.db.Close()
}

func insertMembers(ctx context.Context, tx pgx.Tx, c *models.Collection) error {
	if len(c.Members) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO collection_members (collection_id, member_id, position)
		SELECT $1, m.id, m.pos
		FROM unnest($2::uuid[]) WITH ORDINALITY AS m(id, pos)
	`, c.ID, c.Members)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to insert members: %w", err)
	}
	return nil
}
