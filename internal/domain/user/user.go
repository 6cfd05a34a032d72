package user

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeyField is the JSON property holding the user key.
const KeyField = "key"

// User is the user document: a key plus an open set of flat profile fields.
type User struct {
	key    string
	fields map[string]any
}

// New creates a User. fields must not contain KeyField; if it does, the entry is dropped.
func New(key string, fields map[string]any) User {
	c := cloneFields(fields)
	delete(c, KeyField)
	return User{key: key, fields: c}
}

// Key returns the document key.
func (u User) Key() string { return u.key }

// Fields returns the profile fields.
func (u User) Fields() map[string]any { return u.fields }

// WithKey returns a copy carrying the given key.
func (u User) WithKey(key string) User {
	return User{key: key, fields: u.fields}
}

// MarshalJSON renders the user as a flat object with the key under KeyField.
func (u User) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(u.fields)+1)
	for k, v := range u.fields {
		m[k] = v
	}
	if u.key != "" {
		m[KeyField] = u.key
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	return data, nil
}

// UnmarshalJSON parses a flat object. Numbers are kept as json.Number.
func (u *User) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("unmarshal user: %w", err)
	}
	if m == nil {
		return fmt.Errorf("unmarshal user: expected object")
	}

	var key string
	if raw, ok := m[KeyField]; ok && raw != nil {
		s, isStr := raw.(string)
		if !isStr {
			return fmt.Errorf("unmarshal user: %q must be a string", KeyField)
		}
		key = s
	}
	delete(m, KeyField)

	u.key = key
	u.fields = m
	return nil
}

func cloneFields(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
