package user

import (
	"encoding/json"
	"testing"
)

func TestNew_DropsKeyFromFields(t *testing.T) {
	u := New("u1", map[string]any{"key": "other", "name": "Ann"})

	if u.Key() != "u1" {
		t.Errorf("key = %q, want u1", u.Key())
	}
	if _, ok := u.Fields()["key"]; ok {
		t.Error("fields must not carry the key property")
	}
	if u.Fields()["name"] != "Ann" {
		t.Errorf("name = %v, want Ann", u.Fields()["name"])
	}
}

func TestNew_CopiesFields(t *testing.T) {
	src := map[string]any{"name": "Ann"}
	u := New("u1", src)
	src["name"] = "Bob"

	if u.Fields()["name"] != "Ann" {
		t.Error("New must not alias the caller's map")
	}
}

func TestMarshalJSON_Flat(t *testing.T) {
	u := New("u1", map[string]any{"name": "Ann", "age": 31})

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["key"] != "u1" {
		t.Errorf("key = %v, want u1", m["key"])
	}
	if m["name"] != "Ann" {
		t.Errorf("name = %v, want Ann", m["name"])
	}
	if m["age"] != float64(31) {
		t.Errorf("age = %v, want 31", m["age"])
	}
}

func TestMarshalJSON_OmitsEmptyKey(t *testing.T) {
	data, err := json.Marshal(New("", map[string]any{"name": "Ann"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"name":"Ann"}` {
		t.Errorf("got %s", data)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"key":"u1","name":"Ann","score":12345678901234567}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if u.Key() != "u1" {
		t.Errorf("key = %q, want u1", u.Key())
	}
	if _, ok := u.Fields()["key"]; ok {
		t.Error("key must not remain in fields")
	}
	n, ok := u.Fields()["score"].(json.Number)
	if !ok {
		t.Fatalf("score type = %T, want json.Number", u.Fields()["score"])
	}
	if n.String() != "12345678901234567" {
		t.Errorf("score = %s, lost precision", n)
	}
}

func TestUnmarshalJSON_MissingKey(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"name":"Ann"}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Key() != "" {
		t.Errorf("key = %q, want empty", u.Key())
	}
}

func TestUnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-string key", `{"key":42}`},
		{"array", `[1,2]`},
		{"garbage", `{"key":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var u User
			if err := json.Unmarshal([]byte(tc.input), &u); err == nil {
				t.Errorf("expected error for %s", tc.input)
			}
		})
	}
}

func TestWithKey(t *testing.T) {
	u := New("", map[string]any{"name": "Ann"}).WithKey("generated")

	if u.Key() != "generated" {
		t.Errorf("key = %q, want generated", u.Key())
	}
	if u.Fields()["name"] != "Ann" {
		t.Error("WithKey must keep fields")
	}
}
