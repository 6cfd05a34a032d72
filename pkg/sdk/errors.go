package userdex

import "github.com/kailas-cloud/userdex/internal/db"

// ErrUnavailable is returned (wrapped) when Elasticsearch answers a ping with a failure status.
// Use errors.Is() to check.
var ErrUnavailable = db.ErrUnavailable
