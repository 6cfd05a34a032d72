package userdex

import (
	"encoding/json"
	"fmt"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

// User is a user document: a key plus flat profile fields.
// Its JSON form is a flat object with the key under "key".
type User struct {
	Key    string
	Fields map[string]any
}

// MarshalJSON renders the flat JSON form.
func (u User) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(userToDomain(u))
	if err != nil {
		return nil, fmt.Errorf("userdex: %w", err)
	}
	return data, nil
}

// UnmarshalJSON parses the flat JSON form. Numbers decode as json.Number.
func (u *User) UnmarshalJSON(data []byte) error {
	var d domuser.User
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("userdex: %w", err)
	}
	*u = userFromDomain(d)
	return nil
}

func userToDomain(u User) domuser.User {
	return domuser.New(u.Key, u.Fields)
}

func userFromDomain(d domuser.User) User {
	return User{Key: d.Key(), Fields: d.Fields()}
}

func usersToDomain(users []User) []domuser.User {
	out := make([]domuser.User, len(users))
	for i, u := range users {
		out[i] = userToDomain(u)
	}
	return out
}

func usersFromDomain(users []domuser.User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = userFromDomain(u)
	}
	return out
}
