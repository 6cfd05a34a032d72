package db

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Store is the search engine handle shared by the whole process.
type Store interface {
	esapi.Transport
	Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks search engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
