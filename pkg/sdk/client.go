package userdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/userdex/internal/db"
	"github.com/kailas-cloud/userdex/internal/db/elastic"
	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
	userrepo "github.com/kailas-cloud/userdex/internal/repository/user"
	healthuc "github.com/kailas-cloud/userdex/internal/usecase/health"
	useruc "github.com/kailas-cloud/userdex/internal/usecase/user"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultIndex            = "users"
)

// Внутренний интерфейс для подмены в тестах.
type userUseCase interface {
	CreateIndexIfNotExists(ctx context.Context, name string) error
	AddOrUpdate(ctx context.Context, u domuser.User) (bool, error)
	AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error)
	Get(ctx context.Context, key string) (domuser.User, bool, error)
	GetAll(ctx context.Context) ([]domuser.User, bool, error)
	Remove(ctx context.Context, key string) (bool, error)
	RemoveAll(ctx context.Context) (int64, bool, error)
}

// Client is the userdex SDK entry point.
type Client struct {
	store     db.Store
	index     string
	userSvc   userUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and waits for Elasticsearch to answer a ping.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            defaultIndex,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("userdex: elasticsearch address required (use WithElasticsearch)")
	}
	if cfg.index == "" {
		return nil, errors.New("userdex: index name must not be empty")
	}

	store, err := elastic.NewStore(elastic.Config{
		Addrs:         cfg.addrs,
		Username:      cfg.username,
		Password:      cfg.password,
		SkipTLSVerify: cfg.skipTLSVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("userdex: create elasticsearch store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("userdex: elasticsearch not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := userrepo.New(store, cfg.index).WithRefresh(cfg.refresh)

	return &Client{
		store:     store,
		index:     cfg.index,
		userSvc:   useruc.New(repo),
		healthSvc: healthuc.New(store),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Index returns the index user operations target.
func (c *Client) Index() string { return c.index }

// Ping checks Elasticsearch connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err == nil, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Users returns the user service.
func (c *Client) Users() *UserService {
	return &UserService{svc: c.userSvc, obs: c.obs}
}
