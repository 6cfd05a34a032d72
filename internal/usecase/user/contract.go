package user

import (
	"context"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

// Repository defines the document store contract for users.
// bool results report whether the store accepted the operation; errors are transport faults.
type Repository interface {
	CreateIndexIfNotExists(ctx context.Context, name string) error
	AddOrUpdate(ctx context.Context, u domuser.User) (bool, error)
	AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error)
	Get(ctx context.Context, key string) (domuser.User, bool, error)
	GetAll(ctx context.Context) ([]domuser.User, bool, error)
	Remove(ctx context.Context, key string) (bool, error)
	RemoveAll(ctx context.Context) (deleted int64, ok bool, err error)
}
