package store

import (
	"context"
	"errors"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type Metrics struct {
	next       Store
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// WithMetrics counts and times every store call. Collectors are registered
// on reg.
func WithMetrics(next Store, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		next: next,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hydra",
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Object store operations by result",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hydra",
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Object store operation latency in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := resultOK
	switch {
	case errors.Is(err, ErrObjectNotFound):
		result = resultNotFound
	case err != nil:
		result = resultError
	}
	m.operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) CreateCollection(ctx context.Context, c *models.Collection) (err error) {
	defer func(start time.Time) { m.observe("create_collection", start, err) }(time.Now())
	return m.next.CreateCollection(ctx, c)
}

func (m *Metrics) FindCollection(ctx context.Context, id uuid.UUID) (c *models.Collection, err error) {
	defer func(start time.Time) { m.observe("find_collection", start, err) }(time.Now())
	return m.next.FindCollection(ctx, id)
}

func (m *Metrics) SaveCollection(ctx context.Context, c *models.Collection) (err error) {
	defer func(start time.Time) { m.observe("save_collection", start, err) }(time.Now())
	return m.next.SaveCollection(ctx, c)
}

func (m *Metrics) DestroyCollection(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { m.observe("destroy_collection", start, err) }(time.Now())
	return m.next.DestroyCollection(ctx, id)
}

func (m *Metrics) CreateMember(ctx context.Context, mem *models.Member) (err error) {
	defer func(start time.Time) { m.observe("create_member", start, err) }(time.Now())
	return m.next.CreateMember(ctx, mem)
}

func (m *Metrics) FindMember(ctx context.Context, id uuid.UUID) (mem *models.Member, err error) {
	defer func(start time.Time) { m.observe("find_member", start, err) }(time.Now())
	return m.next.FindMember(ctx, id)
}

func (m *Metrics) DestroyMember(ctx context.Context, id uuid.UUID, now time.Time) (err error) {
	defer func(start time.Time) { m.observe("destroy_member", start, err) }(time.Now())
	return m.next.DestroyMember(ctx, id, now)
}

func (m *Metrics) CollectionsContaining(ctx context.Context, memberID uuid.UUID) (cols []models.Collection, err error) {
	defer func(start time.Time) { m.observe("collections_containing", start, err) }(time.Now())
	return m.next.CollectionsContaining(ctx, memberID)
}

func (m *Metrics) Ping(ctx context.Context) error {
	return m.next.Ping(ctx)
}

func (m *Metrics) Close() {
	m.next.Close()
}
