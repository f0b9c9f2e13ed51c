package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Owner is a reference to a user that the backend either sends as a bare
// id or expands into a full record. Expanded records may arrive as a
// single object or as a one-element array produced by an aggregation
// lookup; only the first element is kept.
type Owner struct {
	id   string
	user *User
}

// OwnerID returns an unexpanded reference.
func OwnerID(id string) Owner { return Owner{id: id} }

// ExpandedOwner returns a reference carrying the full record.
func ExpandedOwner(u User) Owner { return Owner{user: &u} }

// UserID returns the referenced user's id regardless of the wire shape.
func (o Owner) UserID() string {
	if o.user != nil {
		return o.user.ID
	}
	return o.id
}

// Expanded returns the full record when the backend populated it.
func (o Owner) Expanded() (User, bool) {
	if o.user == nil {
		return User{}, false
	}
	return *o.user, true
}

// IsZero reports whether the reference is empty.
func (o Owner) IsZero() bool { return o.user == nil && o.id == "" }

// Name returns the best display name available.
func (o Owner) Name() string {
	if o.user == nil {
		return o.id
	}
	if o.user.FullName != "" {
		return o.user.FullName
	}
	return o.user.Username
}

// UnmarshalJSON resolves the wire shape once.
func (o *Owner) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = Owner{}
		return nil
	}
	switch b[0] {
	case '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*o = Owner{id: id}
	case '{':
		var u User
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		*o = Owner{user: &u}
	case '[':
		var users []User
		if err := json.Unmarshal(b, &users); err != nil {
			return err
		}
		*o = Owner{}
		if len(users) > 0 {
			o.user = &users[0]
		}
	default:
		return fmt.Errorf("owner: unsupported json value %q", b)
	}
	return nil
}

// MarshalJSON writes the expanded record when present, the id otherwise.
func (o Owner) MarshalJSON() ([]byte, error) {
	if o.user != nil {
		return json.Marshal(o.user)
	}
	if o.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.id)
}
