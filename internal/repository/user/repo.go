package user

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/kailas-cloud/userdex/internal/db"
	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

// Repo is the document store gateway for users. Every operation issues one
// request against the configured index and reports the engine's outcome.
// esapi writes DocumentID into the URL path verbatim, so keys are path-escaped here.
type Repo struct {
	transport esapi.Transport
	index     string
	refresh   string
}

// New creates a user repository bound to index.
func New(t esapi.Transport, index string) *Repo {
	return &Repo{transport: t, index: index}
}

// WithRefresh sets the refresh policy for writes ("", "true", "false", "wait_for").
func (r *Repo) WithRefresh(refresh string) *Repo {
	r.refresh = refresh
	return r
}

// CreateIndexIfNotExists creates name with default settings when it is missing.
// The create response is not inspected; only transport faults are returned.
func (r *Repo) CreateIndexIfNotExists(ctx context.Context, name string) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, r.transport)
	if err != nil {
		return &db.Error{Op: db.OpIndexExists, Err: err}
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: name}.Do(ctx, r.transport)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	drain(res)
	return nil
}

// AddOrUpdate indexes u under its key with op_type=index (full replace).
// An empty key lets the engine assign an id.
func (r *Repo) AddOrUpdate(ctx context.Context, u domuser.User) (bool, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("marshal user: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: url.PathEscape(u.Key()),
		Body:       bytes.NewReader(body),
		OpType:     "index",
		Refresh:    r.refresh,
	}.Do(ctx, r.transport)
	if err != nil {
		return false, &db.Error{Op: db.OpIndex, Err: err}
	}
	drain(res)
	return !res.IsError(), nil
}

// AddOrUpdateBulk upserts users in one bulk request (update + doc_as_upsert).
// indexName is accepted for API compatibility; writes always target the configured index.
// The result is batch-level: true only if the request succeeded and no item failed.
func (r *Repo) AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error) {
	_ = indexName

	keyed := make([]domuser.User, len(users))
	for i, u := range users {
		if u.Key() == "" {
			u = u.WithKey(uuid.NewString())
		}
		keyed[i] = u
	}

	body, err := buildBulkUpsertBody(keyed)
	if err != nil {
		return false, err
	}

	res, err := esapi.BulkRequest{
		Index:   r.index,
		Body:    bytes.NewReader(body),
		Refresh: r.refresh,
	}.Do(ctx, r.transport)
	if err != nil {
		return false, &db.Error{Op: db.OpBulk, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return false, nil
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return false, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("decode response: %w", err)}
	}
	return !br.Errors, nil
}

// Get fetches a user by key. Not-found and any other non-success are both reported as absent.
func (r *Repo) Get(ctx context.Context, key string) (domuser.User, bool, error) {
	res, err := esapi.GetRequest{Index: r.index, DocumentID: url.PathEscape(key)}.Do(ctx, r.transport)
	if err != nil {
		return domuser.User{}, false, &db.Error{Op: db.OpGet, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return domuser.User{}, false, nil
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return domuser.User{}, false, &db.Error{Op: db.OpGet, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !gr.Found || len(gr.Source) == 0 {
		return domuser.User{}, false, nil
	}

	u, err := parseSource(gr.ID, gr.Source)
	if err != nil {
		return domuser.User{}, false, &db.Error{Op: db.OpGet, Err: err}
	}
	return u, true, nil
}

// GetAll runs an unfiltered search. No size is sent, so the engine's default
// result window bounds the list. ok is false when the engine reports failure.
func (r *Repo) GetAll(ctx context.Context) ([]domuser.User, bool, error) {
	res, err := esapi.SearchRequest{Index: []string{r.index}}.Do(ctx, r.transport)
	if err != nil {
		return nil, false, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return nil, false, nil
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, false, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	users := make([]domuser.User, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		u, err := parseSource(h.ID, h.Source)
		if err != nil {
			return nil, false, &db.Error{Op: db.OpSearch, Err: err}
		}
		users = append(users, u)
	}
	return users, true, nil
}

// Remove deletes a user by key. false when the engine reports failure (including not found).
func (r *Repo) Remove(ctx context.Context, key string) (bool, error) {
	res, err := esapi.DeleteRequest{Index: r.index, DocumentID: url.PathEscape(key), Refresh: r.refresh}.Do(ctx, r.transport)
	if err != nil {
		return false, &db.Error{Op: db.OpDelete, Err: err}
	}
	drain(res)
	return !res.IsError(), nil
}

// RemoveAll deletes every document of the configured index and returns the deleted count.
func (r *Repo) RemoveAll(ctx context.Context) (int64, bool, error) {
	req := esapi.DeleteByQueryRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(matchAllQuery),
	}
	if r.refresh != "" && r.refresh != "false" {
		refresh := true
		req.Refresh = &refresh
	}

	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return 0, false, &db.Error{Op: db.OpDeleteByQuery, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return 0, false, nil
	}

	var dr deleteByQueryResponse
	if err := json.NewDecoder(res.Body).Decode(&dr); err != nil {
		return 0, false, &db.Error{Op: db.OpDeleteByQuery, Err: fmt.Errorf("decode response: %w", err)}
	}
	return dr.Deleted, true, nil
}

// drain consumes and closes the body so the connection can be reused.
func drain(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
