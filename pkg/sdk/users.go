package userdex

import (
	"context"
	"fmt"
	"time"
)

// UserService manages users in the configured index.
//
// Boolean results report whether Elasticsearch accepted the operation
// (false for not found and other failure statuses); errors are transport faults.
type UserService struct {
	svc userUseCase
	obs *observer
}

// CreateIndexIfNotExists creates the named index with default settings when missing.
func (s *UserService) CreateIndexIfNotExists(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("create_index", start, err == nil, err) }()

	if err = s.svc.CreateIndexIfNotExists(ctx, name); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// AddOrUpdate stores u, fully replacing any document with the same key.
func (s *UserService) AddOrUpdate(ctx context.Context, u User) (ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("add_or_update", start, ok, err) }()

	ok, err = s.svc.AddOrUpdate(ctx, userToDomain(u))
	if err != nil {
		return false, fmt.Errorf("add or update: %w", err)
	}
	return ok, nil
}

// AddOrUpdateBulk upserts users in one request. Users without a key get a generated one.
// indexName is accepted for compatibility; writes go to the client's index.
func (s *UserService) AddOrUpdateBulk(ctx context.Context, users []User, indexName string) (ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("add_or_update_bulk", start, ok, err) }()

	ok, err = s.svc.AddOrUpdateBulk(ctx, usersToDomain(users), indexName)
	if err != nil {
		return false, fmt.Errorf("add or update bulk: %w", err)
	}
	return ok, nil
}

// Get returns the user stored under key.
func (s *UserService) Get(ctx context.Context, key string) (u User, found bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get", start, found, err) }()

	d, found, err := s.svc.Get(ctx, key)
	if err != nil {
		return User{}, false, fmt.Errorf("get: %w", err)
	}
	if !found {
		return User{}, false, nil
	}
	return userFromDomain(d), true, nil
}

// GetAll lists users up to the engine's default result window.
// ok is false when the index does not exist or the search failed.
func (s *UserService) GetAll(ctx context.Context) (users []User, ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_all", start, ok, err) }()

	ds, ok, err := s.svc.GetAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get all: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return usersFromDomain(ds), true, nil
}

// Remove deletes the user stored under key.
func (s *UserService) Remove(ctx context.Context, key string) (ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("remove", start, ok, err) }()

	ok, err = s.svc.Remove(ctx, key)
	if err != nil {
		return false, fmt.Errorf("remove: %w", err)
	}
	return ok, nil
}

// RemoveAll deletes every user and returns the deleted count.
func (s *UserService) RemoveAll(ctx context.Context) (deleted int64, ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("remove_all", start, ok, err) }()

	deleted, ok, err = s.svc.RemoveAll(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("remove all: %w", err)
	}
	return deleted, ok, nil
}
