package userdex

import (
	"context"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
	healthuc "github.com/kailas-cloud/userdex/internal/usecase/health"
)

// --- userUseCase mock ---

type mockUserUC struct {
	createIndexFn func(ctx context.Context, name string) error
	upsertFn      func(ctx context.Context, u domuser.User) (bool, error)
	bulkFn        func(ctx context.Context, users []domuser.User, indexName string) (bool, error)
	getFn         func(ctx context.Context, key string) (domuser.User, bool, error)
	getAllFn      func(ctx context.Context) ([]domuser.User, bool, error)
	removeFn      func(ctx context.Context, key string) (bool, error)
	removeAllFn   func(ctx context.Context) (int64, bool, error)
}

func (m *mockUserUC) CreateIndexIfNotExists(ctx context.Context, name string) error {
	return m.createIndexFn(ctx, name)
}

func (m *mockUserUC) AddOrUpdate(ctx context.Context, u domuser.User) (bool, error) {
	return m.upsertFn(ctx, u)
}

func (m *mockUserUC) AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error) {
	return m.bulkFn(ctx, users, indexName)
}

func (m *mockUserUC) Get(ctx context.Context, key string) (domuser.User, bool, error) {
	return m.getFn(ctx, key)
}

func (m *mockUserUC) GetAll(ctx context.Context) ([]domuser.User, bool, error) {
	return m.getAllFn(ctx)
}

func (m *mockUserUC) Remove(ctx context.Context, key string) (bool, error) {
	return m.removeFn(ctx, key)
}

func (m *mockUserUC) RemoveAll(ctx context.Context) (int64, bool, error) {
	return m.removeAllFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
