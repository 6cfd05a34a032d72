package user

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// fakeES emulates the handful of Elasticsearch endpoints the repository talks to.
type fakeES struct {
	mu       sync.Mutex
	indices  map[string]map[string]map[string]any
	nextID   int
	calls    []string
	failWith error
	bulkFail bool
}

func newFakeES() *fakeES {
	return &fakeES{indices: map[string]map[string]map[string]any{}}
}

func (f *fakeES) Perform(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req.Method+" "+req.URL.EscapedPath())
	if f.failWith != nil {
		return nil, f.failWith
	}

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	parts := strings.Split(strings.Trim(req.URL.EscapedPath(), "/"), "/")
	for i, p := range parts {
		dec, err := url.PathUnescape(p)
		if err != nil {
			return respond(http.StatusBadRequest, `{"error":"invalid path"}`), nil
		}
		parts[i] = dec
	}
	if len(parts) == 1 && parts[0] == "" {
		return respond(http.StatusOK, `{"tagline":"You Know, for Search"}`), nil
	}

	idx := parts[0]
	switch {
	case len(parts) == 1 && req.Method == http.MethodHead:
		if _, ok := f.indices[idx]; ok {
			return respond(http.StatusOK, ``), nil
		}
		return respond(http.StatusNotFound, ``), nil

	case len(parts) == 1 && req.Method == http.MethodPut:
		if _, ok := f.indices[idx]; ok {
			return respond(http.StatusBadRequest,
				`{"error":{"type":"resource_already_exists_exception"},"status":400}`), nil
		}
		f.indices[idx] = map[string]map[string]any{}
		return respond(http.StatusOK, fmt.Sprintf(`{"acknowledged":true,"index":%q}`, idx)), nil

	case len(parts) >= 2 && parts[1] == "_doc":
		return f.doc(req.Method, idx, parts[2:], body)

	case len(parts) == 2 && parts[1] == "_bulk":
		return f.bulk(idx, body)

	case len(parts) == 2 && parts[1] == "_search":
		return f.search(idx)

	case len(parts) == 2 && parts[1] == "_delete_by_query":
		docs, ok := f.indices[idx]
		if !ok {
			return respond(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`), nil
		}
		n := len(docs)
		f.indices[idx] = map[string]map[string]any{}
		return respond(http.StatusOK, fmt.Sprintf(`{"deleted":%d,"failures":[]}`, n)), nil
	}

	return respond(http.StatusBadRequest, `{"error":"unsupported"}`), nil
}

func (f *fakeES) doc(method, idx string, rest []string, body []byte) (*http.Response, error) {
	var id string
	if len(rest) > 0 {
		id = rest[0]
	}

	switch method {
	case http.MethodPut, http.MethodPost:
		var src map[string]any
		if err := json.Unmarshal(body, &src); err != nil {
			return respond(http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception"},"status":400}`), nil
		}
		if id == "" {
			f.nextID++
			id = fmt.Sprintf("auto-%d", f.nextID)
		}
		docs := f.ensure(idx)
		_, existed := docs[id]
		docs[id] = src
		if existed {
			return respond(http.StatusOK, fmt.Sprintf(`{"_id":%q,"result":"updated"}`, id)), nil
		}
		return respond(http.StatusCreated, fmt.Sprintf(`{"_id":%q,"result":"created"}`, id)), nil

	case http.MethodGet:
		docs, ok := f.indices[idx]
		if !ok {
			return respond(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`), nil
		}
		src, ok := docs[id]
		if !ok {
			return respond(http.StatusNotFound, fmt.Sprintf(`{"_id":%q,"found":false}`, id)), nil
		}
		data, _ := json.Marshal(map[string]any{"_index": idx, "_id": id, "found": true, "_source": src})
		return respond(http.StatusOK, string(data)), nil

	case http.MethodDelete:
		docs, ok := f.indices[idx]
		if !ok {
			return respond(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`), nil
		}
		if _, ok := docs[id]; !ok {
			return respond(http.StatusNotFound, fmt.Sprintf(`{"_id":%q,"result":"not_found"}`, id)), nil
		}
		delete(docs, id)
		return respond(http.StatusOK, fmt.Sprintf(`{"_id":%q,"result":"deleted"}`, id)), nil
	}

	return respond(http.StatusMethodNotAllowed, ``), nil
}

func (f *fakeES) bulk(idx string, body []byte) (*http.Response, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return respond(http.StatusBadRequest, `{"error":{"type":"action_request_validation_exception"},"status":400}`), nil
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	docs := f.ensure(idx)
	for sc.Scan() {
		var action map[string]struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(sc.Bytes(), &action); err != nil {
			return respond(http.StatusBadRequest, `{"error":"malformed action"}`), nil
		}
		if !sc.Scan() {
			return respond(http.StatusBadRequest, `{"error":"missing payload"}`), nil
		}
		var payload struct {
			Doc         map[string]any `json:"doc"`
			DocAsUpsert bool           `json:"doc_as_upsert"`
		}
		if err := json.Unmarshal(sc.Bytes(), &payload); err != nil {
			return respond(http.StatusBadRequest, `{"error":"malformed payload"}`), nil
		}
		upd, ok := action["update"]
		if !ok {
			return respond(http.StatusBadRequest, `{"error":"unsupported action"}`), nil
		}
		cur, exists := docs[upd.ID]
		if !exists {
			if !payload.DocAsUpsert {
				continue
			}
			cur = map[string]any{}
		}
		for k, v := range payload.Doc {
			cur[k] = v
		}
		docs[upd.ID] = cur
	}

	return respond(http.StatusOK, fmt.Sprintf(`{"took":1,"errors":%t,"items":[]}`, f.bulkFail)), nil
}

func (f *fakeES) search(idx string) (*http.Response, error) {
	docs, ok := f.indices[idx]
	if !ok {
		return respond(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`), nil
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	total := len(ids)
	if len(ids) > 10 {
		ids = ids[:10]
	}

	hits := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, map[string]any{"_index": idx, "_id": id, "_source": docs[id]})
	}
	data, _ := json.Marshal(map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": total, "relation": "eq"},
			"hits":  hits,
		},
	})
	return respond(http.StatusOK, string(data)), nil
}

func (f *fakeES) ensure(idx string) map[string]map[string]any {
	docs, ok := f.indices[idx]
	if !ok {
		docs = map[string]map[string]any{}
		f.indices[idx] = docs
	}
	return docs
}

func (f *fakeES) countCalls(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func respond(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:9200: connect: connection refused")

// rejectAll answers every request with a 400.
type rejectAll struct{}

func (rejectAll) Perform(*http.Request) (*http.Response, error) {
	return respond(http.StatusBadRequest, `{"error":{"type":"illegal_argument_exception"},"status":400}`), nil
}
