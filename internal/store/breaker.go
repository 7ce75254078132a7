package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	Timeout     time.Duration
}

// Breaker stops calling the underlying store after repeated failures.
// A missing object is an answer, not a failure, and never trips it.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func WithBreaker(next Store, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "object-store"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("object store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	return v.(T), nil
}

func run(b *Breaker, fn func() error) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (b *Breaker) CreateCollection(ctx context.Context, c *models.Collection) error {
	return run(b, func() error { return b.next.CreateCollection(ctx, c) })
}

func (b *Breaker) FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	return execute(b, func() (*models.Collection, error) { return b.next.FindCollection(ctx, id) })
}

func (b *Breaker) SaveCollection(ctx context.Context, c *models.Collection) error {
	return run(b, func() error { return b.next.SaveCollection(ctx, c) })
}

func (b *Breaker) DestroyCollection(ctx context.Context, id uuid.UUID) error {
	return run(b, func() error { return b.next.DestroyCollection(ctx, id) })
}

func (b *Breaker) CreateMember(ctx context.Context, m *models.Member) error {
	return run(b, func() error { return b.next.CreateMember(ctx, m) })
}

func (b *Breaker) FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return execute(b, func() (*models.Member, error) { return b.next.FindMember(ctx, id) })
}

func (b *Breaker) DestroyMember(ctx context.Context, id uuid.UUID, now time.Time) error {
	return run(b, func() error { return b.next.DestroyMember(ctx, id, now) })
}

func (b *Breaker) CollectionsContaining(ctx context.Context, memberID uuid.UUID) ([]models.Collection, error) {
	return execute(b, func() ([]models.Collection, error) { return b.next.CollectionsContaining(ctx, memberID) })
}

func (b *Breaker) Ping(ctx context.Context) error {
	return run(b, func() error { return b.next.Ping(ctx) })
}

func (b *Breaker) Close() {
	b.next.Close()
}
