package userdex

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

func TestUserService_AddOrUpdate(t *testing.T) {
	mock := &mockUserUC{
		upsertFn: func(_ context.Context, u domuser.User) (bool, error) {
			if u.Key() != "u1" {
				t.Errorf("key = %q, want u1", u.Key())
			}
			if u.Fields()["name"] != "Ann" {
				t.Errorf("fields = %v", u.Fields())
			}
			return true, nil
		},
	}

	svc := &UserService{svc: mock}
	ok, err := svc.AddOrUpdate(context.Background(), User{Key: "u1", Fields: map[string]any{"name": "Ann"}})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestUserService_AddOrUpdate_Error(t *testing.T) {
	cause := errors.New("connection refused")
	mock := &mockUserUC{
		upsertFn: func(_ context.Context, _ domuser.User) (bool, error) { return false, cause },
	}

	_, err := (&UserService{svc: mock}).AddOrUpdate(context.Background(), User{Key: "u1"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestUserService_AddOrUpdateBulk(t *testing.T) {
	mock := &mockUserUC{
		bulkFn: func(_ context.Context, users []domuser.User, indexName string) (bool, error) {
			if len(users) != 2 {
				t.Errorf("len = %d, want 2", len(users))
			}
			if indexName != "other" {
				t.Errorf("indexName = %q, want other", indexName)
			}
			return true, nil
		},
	}

	ok, err := (&UserService{svc: mock}).AddOrUpdateBulk(context.Background(),
		[]User{{Key: "a"}, {Key: "b"}}, "other")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestUserService_Get(t *testing.T) {
	mock := &mockUserUC{
		getFn: func(_ context.Context, key string) (domuser.User, bool, error) {
			if key == "u1" {
				return domuser.New("u1", map[string]any{"name": "Ann"}), true, nil
			}
			return domuser.User{}, false, nil
		},
	}
	svc := &UserService{svc: mock}

	u, found, err := svc.Get(context.Background(), "u1")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if u.Key != "u1" || u.Fields["name"] != "Ann" {
		t.Errorf("user = %+v", u)
	}

	u, found, err = svc.Get(context.Background(), "missing")
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if u.Key != "" {
		t.Errorf("expected zero user, got %+v", u)
	}
}

func TestUserService_GetAll(t *testing.T) {
	mock := &mockUserUC{
		getAllFn: func(_ context.Context) ([]domuser.User, bool, error) {
			return []domuser.User{}, true, nil
		},
	}

	users, ok, err := (&UserService{svc: mock}).GetAll(context.Background())
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", users)
	}
}

func TestUserService_GetAll_MissingIndex(t *testing.T) {
	mock := &mockUserUC{
		getAllFn: func(_ context.Context) ([]domuser.User, bool, error) { return nil, false, nil },
	}

	users, ok, err := (&UserService{svc: mock}).GetAll(context.Background())
	if err != nil || ok || users != nil {
		t.Fatalf("users=%v ok=%v err=%v", users, ok, err)
	}
}

func TestUserService_RemoveAndRemoveAll(t *testing.T) {
	mock := &mockUserUC{
		removeFn:    func(_ context.Context, _ string) (bool, error) { return true, nil },
		removeAllFn: func(_ context.Context) (int64, bool, error) { return 4, true, nil },
	}
	svc := &UserService{svc: mock}

	if ok, err := svc.Remove(context.Background(), "u1"); err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	n, ok, err := svc.RemoveAll(context.Background())
	if err != nil || !ok || n != 4 {
		t.Fatalf("remove all: n=%d ok=%v err=%v", n, ok, err)
	}
}

func TestUserService_CreateIndex(t *testing.T) {
	var got string
	mock := &mockUserUC{
		createIndexFn: func(_ context.Context, name string) error {
			got = name
			return nil
		},
	}

	if err := (&UserService{svc: mock}).CreateIndexIfNotExists(context.Background(), "people"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "people" {
		t.Errorf("name = %q, want people", got)
	}
}

func TestUserService_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("observer: %v", err)
	}
	mock := &mockUserUC{
		removeFn: func(_ context.Context, key string) (bool, error) { return key == "u1", nil },
	}
	svc := &UserService{svc: mock, obs: obs}

	_, _ = svc.Remove(context.Background(), "u1")
	_, _ = svc.Remove(context.Background(), "ghost")

	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("remove", statusOK)); v != 1 {
		t.Errorf("ok count = %f, want 1", v)
	}
	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("remove", statusRejected)); v != 1 {
		t.Errorf("rejected count = %f, want 1", v)
	}
}
