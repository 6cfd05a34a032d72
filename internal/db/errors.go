package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrUnavailable = errors.New("db: search engine unavailable")
)

// Op constants name the Elasticsearch APIs for error context.
const (
	OpPing          = "ping"
	OpIndexExists   = "indices.exists"
	OpCreateIndex   = "indices.create"
	OpIndex         = "index"
	OpBulk          = "bulk"
	OpGet           = "get"
	OpSearch        = "search"
	OpDelete        = "delete"
	OpDeleteByQuery = "delete_by_query"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
