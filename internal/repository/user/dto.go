package user

import (
	"bytes"
	"encoding/json"
	"fmt"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

// getResponse is the subset of a GET /{index}/_doc/{id} body we read.
type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

// searchResponse is the subset of a _search body we read.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// bulkResponse carries the batch-level error flag only; per-item results are not surfaced.
type bulkResponse struct {
	Errors bool `json:"errors"`
}

// deleteByQueryResponse carries the deleted document count.
type deleteByQueryResponse struct {
	Deleted int64 `json:"deleted"`
}

type bulkUpdateAction struct {
	Update struct {
		ID string `json:"_id"`
	} `json:"update"`
}

type bulkUpdateBody struct {
	Doc         domuser.User `json:"doc"`
	DocAsUpsert bool         `json:"doc_as_upsert"`
}

var matchAllQuery = []byte(`{"query":{"match_all":{}}}`)

// buildBulkUpsertBody renders one update+doc_as_upsert pair per user as NDJSON.
func buildBulkUpsertBody(users []domuser.User) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, u := range users {
		var action bulkUpdateAction
		action.Update.ID = u.Key()
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action %s: %w", u.Key(), err)
		}
		if err := enc.Encode(bulkUpdateBody{Doc: u, DocAsUpsert: true}); err != nil {
			return nil, fmt.Errorf("encode bulk doc %s: %w", u.Key(), err)
		}
	}
	return buf.Bytes(), nil
}

// parseSource hydrates a user from _source, falling back to _id for the key.
func parseSource(id string, src json.RawMessage) (domuser.User, error) {
	var u domuser.User
	if err := json.Unmarshal(src, &u); err != nil {
		return domuser.User{}, fmt.Errorf("decode source %s: %w", id, err)
	}
	if u.Key() == "" {
		u = u.WithKey(id)
	}
	return u, nil
}
