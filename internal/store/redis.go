package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

var errContention = errors.New("too many concurrent writers")

// reader is the read side shared by the client and a WATCH transaction.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis keeps each entity as a JSON value and, per member, a set of the
// collections listing it. Both are written in the same MULTI/EXEC.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "hydra"
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) collectionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:collection:%s", s.prefix, id)
}

func (s *Redis) memberKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:member:%s", s.prefix, id)
}

func (s *Redis) containedInKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:member:%s:collections", s.prefix, id)
}

func (s *Redis) CreateCollection(ctx context.Context, c *models.Collection) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	key := s.collectionKey(c.ID)
	watched := append([]string{key}, s.memberKeys(c.Members)...)

	return s.watch(ctx, func(tx *redis.Tx) error {
		if err := s.checkMembers(ctx, tx, c.Members); err != nil {
			return err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			for _, id := range c.Members {
				pipe.SAdd(ctx, s.containedInKey(id), c.ID.String())
			}
			return nil
		})
		return err
	}, watched...)
}

func (s *Redis) FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	return s.getCollection(ctx, s.client, id)
}

func (s *Redis) SaveCollection(ctx context.Context, c *models.Collection) error {
	key := s.collectionKey(c.ID)
	watched := append([]string{key}, s.memberKeys(c.Members)...)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := s.getCollection(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if err := s.checkMembers(ctx, tx, c.Members); err != nil {
			return err
		}

		saved := c.Clone()
		saved.Depositor = existing.Depositor
		data, err := json.Marshal(saved)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			for _, id := range existing.Members {
				if !saved.HasMember(id) {
					pipe.SRem(ctx, s.containedInKey(id), c.ID.String())
				}
			}
			for _, id := range saved.Members {
				pipe.SAdd(ctx, s.containedInKey(id), c.ID.String())
			}
			return nil
		})
		return err
	}, watched...)
}

func (s *Redis) DestroyCollection(ctx context.Context, id uuid.UUID) error {
	key := s.collectionKey(id)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := s.getCollection(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			for _, m := range existing.Members {
				pipe.SRem(ctx, s.containedInKey(m), id.String())
			}
			return nil
		})
		return err
	}, key)
}

func (s *Redis) CreateMember(ctx context.Context, m *models.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.memberKey(m.ID), data, 0).Err()
}

func (s *Redis) FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	data, err := s.client.Get(ctx, s.memberKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	var m models.Member
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", id, err)
	}
	return &m, nil
}

// DestroyMember deletes the member and strips it from every collection that
// lists it.
func (s *Redis) DestroyMember(ctx context.Context, id uuid.UUID, now time.Time) error {
	for range maxWatchRetries {
		ids, err := s.client.SMembers(ctx, s.containedInKey(id)).Result()
		if err != nil {
			return err
		}
		colIDs, err := parseIDs(ids)
		if err != nil {
			return err
		}

		watched := []string{s.memberKey(id), s.containedInKey(id)}
		for _, cid := range colIDs {
			watched = append(watched, s.collectionKey(cid))
		}

		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, s.memberKey(id)).Result()
			if err != nil {
				return err
			}
			if exists == 0 {
				return ErrObjectNotFound
			}

			current, err := tx.SMembers(ctx, s.containedInKey(id)).Result()
			if err != nil {
				return err
			}
			slices.Sort(current)
			slices.Sort(ids)
			if !slices.Equal(current, ids) {
				return redis.TxFailedErr
			}

			updated := make(map[string][]byte, len(colIDs))
			for _, cid := range colIDs {
				c, err := s.getCollection(ctx, tx, cid)
				if errors.Is(err, ErrObjectNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				c.Members = slices.DeleteFunc(c.Members, func(m uuid.UUID) bool { return m == id })
				c.DateModified = now
				data, err := json.Marshal(c)
				if err != nil {
					return err
				}
				updated[s.collectionKey(cid)] = data
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for key, data := range updated {
					pipe.Set(ctx, key, data, 0)
				}
				pipe.Del(ctx, s.memberKey(id), s.containedInKey(id))
				return nil
			})
			return err
		}, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errContention
}

func (s *Redis) CollectionsContaining(ctx context.Context, memberID uuid.UUID) ([]models.Collection, error) {
	ids, err := s.client.SMembers(ctx, s.containedInKey(memberID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	colIDs, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(colIDs))
	for i, id := range colIDs {
		keys[i] = s.collectionKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var collections []models.Collection
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var c models.Collection
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		if c.HasMember(memberID) {
			collections = append(collections, c)
		}
	}
	sortByUpload(collections)
	return collections, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() {
	_ = s.client.Close()
}

func (s *Redis) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxWatchRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errContention
}

func (s *Redis) getCollection(ctx context.Context, r reader, id uuid.UUID) (*models.Collection, error) {
	data, err := r.Get(ctx, s.collectionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	var c models.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", id, err)
	}
	if c.Members == nil {
		c.Members = []uuid.UUID{}
	}
	return &c, nil
}

func (s *Redis) checkMembers(ctx context.Context, r reader, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := s.memberKeys(ids)
	n, err := r.Exists(ctx, keys...).Result()
	if err != nil {
		return err
	}
	// EXISTS counts repeated keys once per occurrence.
	if n != int64(len(keys)) {
		return ErrObjectNotFound
	}
	return nil
}

func (s *Redis) memberKeys(ids []uuid.UUID) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.memberKey(id)
	}
	return keys
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in index: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
