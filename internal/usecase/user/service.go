package user

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/userdex/internal/db"
	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
	"github.com/kailas-cloud/userdex/internal/logger"
	"github.com/kailas-cloud/userdex/internal/metrics"
)

// Service exposes user operations over the document store and records
// store metrics for each call.
type Service struct {
	repo Repository
}

// New creates a user service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateIndexIfNotExists ensures the named index exists.
func (s *Service) CreateIndexIfNotExists(ctx context.Context, name string) error {
	start := time.Now()
	err := s.repo.CreateIndexIfNotExists(ctx, name)
	s.observe(ctx, db.OpCreateIndex, start, err == nil, err)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// AddOrUpdate stores u, replacing any existing document with the same key.
func (s *Service) AddOrUpdate(ctx context.Context, u domuser.User) (bool, error) {
	start := time.Now()
	ok, err := s.repo.AddOrUpdate(ctx, u)
	s.observe(ctx, db.OpIndex, start, ok, err, zap.String("key", u.Key()))
	if err != nil {
		return false, fmt.Errorf("add or update user: %w", err)
	}
	return ok, nil
}

// AddOrUpdateBulk upserts users in one batch.
func (s *Service) AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error) {
	start := time.Now()
	ok, err := s.repo.AddOrUpdateBulk(ctx, users, indexName)
	s.observe(ctx, db.OpBulk, start, ok, err, zap.Int("batch_size", len(users)))
	if err != nil {
		return false, fmt.Errorf("bulk upsert users: %w", err)
	}
	return ok, nil
}

// Get returns the user stored under key.
func (s *Service) Get(ctx context.Context, key string) (domuser.User, bool, error) {
	start := time.Now()
	u, found, err := s.repo.Get(ctx, key)
	s.observe(ctx, db.OpGet, start, found, err, zap.String("key", key))
	if err != nil {
		return domuser.User{}, false, fmt.Errorf("get user %s: %w", key, err)
	}
	return u, found, nil
}

// GetAll lists users within the store's default result window.
func (s *Service) GetAll(ctx context.Context) ([]domuser.User, bool, error) {
	start := time.Now()
	users, ok, err := s.repo.GetAll(ctx)
	s.observe(ctx, db.OpSearch, start, ok, err, zap.Int("count", len(users)))
	if err != nil {
		return nil, false, fmt.Errorf("get all users: %w", err)
	}
	return users, ok, nil
}

// Remove deletes the user stored under key.
func (s *Service) Remove(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.repo.Remove(ctx, key)
	s.observe(ctx, db.OpDelete, start, ok, err, zap.String("key", key))
	if err != nil {
		return false, fmt.Errorf("remove user %s: %w", key, err)
	}
	return ok, nil
}

// RemoveAll deletes every user and returns how many were removed.
func (s *Service) RemoveAll(ctx context.Context) (int64, bool, error) {
	start := time.Now()
	n, ok, err := s.repo.RemoveAll(ctx)
	s.observe(ctx, db.OpDeleteByQuery, start, ok, err, zap.Int64("deleted", n))
	if err != nil {
		return 0, false, fmt.Errorf("remove all users: %w", err)
	}
	return n, ok, nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, ok bool, err error, fields ...zap.Field) {
	duration := time.Since(start)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case !ok:
		outcome = metrics.OutcomeRejected
	}

	metrics.StoreOperationsTotal.WithLabelValues(op, outcome).Inc()
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(duration.Seconds())

	logger.FromContext(ctx).Debug("Store operation",
		append(fields,
			zap.String("operation", op),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
		)...,
	)
}
