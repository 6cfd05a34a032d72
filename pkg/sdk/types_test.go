package userdex

import (
	"encoding/json"
	"testing"
)

func TestUser_JSONFlat(t *testing.T) {
	data, err := json.Marshal(User{Key: "u1", Fields: map[string]any{"name": "Ann"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"key":"u1","name":"Ann"}` {
		t.Errorf("got %s", data)
	}
}

func TestUser_UnmarshalArray(t *testing.T) {
	var users []User
	if err := json.Unmarshal([]byte(`[{"key":"a","age":3},{"name":"anon"}]`), &users); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].Key != "a" {
		t.Errorf("key = %q, want a", users[0].Key)
	}
	if n, ok := users[0].Fields["age"].(json.Number); !ok || n.String() != "3" {
		t.Errorf("age = %#v, want json.Number 3", users[0].Fields["age"])
	}
	if users[1].Key != "" {
		t.Errorf("key = %q, want empty", users[1].Key)
	}
}

func TestUser_UnmarshalInvalid(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"key":7}`), &u); err == nil {
		t.Fatal("expected error for non-string key")
	}
}

func TestUsersDomainRoundTrip(t *testing.T) {
	in := []User{{Key: "a", Fields: map[string]any{"key": "ignored", "x": 1}}}
	out := usersFromDomain(usersToDomain(in))

	if out[0].Key != "a" {
		t.Errorf("key = %q", out[0].Key)
	}
	if _, ok := out[0].Fields["key"]; ok {
		t.Error("key must not leak into fields")
	}
}
