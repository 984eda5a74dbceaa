// internal/model/contact.go
package model

import (
	"strings"
	"time"
)

type Contact struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Tags      Tags      `db:"tags" json:"tags"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContactFilter narrows a contact listing to one owner.
type ContactFilter struct {
	UserID int
	Search string
	Tag    string
	Limit  int
	Offset int
}

// Matches applies Search and Tag the way the SQL repository does.
func (f ContactFilter) Matches(c *Contact) bool {
	if f.UserID != 0 && c.UserID != f.UserID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Email), q) && !strings.Contains(strings.ToLower(c.Name), q) {
			return false
		}
	}
	if f.Tag != "" && !c.Tags.Has(f.Tag) {
		return false
	}
	return true
}

// Tags is a small ordered set. Membership is case-insensitive; order matters
// because merge tags address tags by position.
type Tags []string

// NewTags trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling.
func NewTags(raw []string) Tags {
	out := make(Tags, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || out.Has(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (t Tags) Has(tag string) bool {
	return t.Lookup(tag) != ""
}

// Lookup returns the stored spelling of tag, or "" if absent.
func (t Tags) Lookup(tag string) string {
	for _, v := range t {
		if strings.EqualFold(v, tag) {
			return v
		}
	}
	return ""
}

// At is 1-indexed; ok is false when n is out of range.
func (t Tags) At(n int) (string, bool) {
	if n < 1 || n > len(t) {
		return "", false
	}
	return t[n-1], true
}
