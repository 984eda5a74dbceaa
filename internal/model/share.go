// internal/model/share.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// ResourceKind is the closed set of shareable resources.
type ResourceKind string

const (
	KindList     ResourceKind = "lists"
	KindTemplate ResourceKind = "templates"
	KindCampaign ResourceKind = "campaigns"
)

var ResourceKinds = []ResourceKind{KindList, KindTemplate, KindCampaign}

func ParseResourceKind(s string) (ResourceKind, error) {
	switch s {
	case "lists", "list":
		return KindList, nil
	case "templates", "template":
		return KindTemplate, nil
	case "campaigns", "campaign":
		return KindCampaign, nil
	}
	return "", fmt.Errorf("unknown resource type %q", s)
}

// Singular names one resource in messages ("list not found").
func (k ResourceKind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case "":
		return PermissionView, nil
	case PermissionView, PermissionEdit:
		return Permission(s), nil
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// Allows reports whether holding p is enough for an operation needing want.
func (p Permission) Allows(want Permission) bool {
	if p == PermissionEdit {
		return true
	}
	return p == want
}

type Share struct {
	ID           int          `db:"id" json:"id"`
	ResourceType ResourceKind `db:"resource_type" json:"resource_type"`
	ResourceID   int          `db:"resource_id" json:"resource_id"`
	OwnerID      int          `db:"owner_id" json:"owner_id"`
	SharedWithID int          `db:"shared_with_id" json:"shared_with_id"`
	Permission   Permission   `db:"permission" json:"permission"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`

	// Joined from users for display; not stored.
	Email string `db:"-" json:"email,omitempty"`
	Name  string `db:"-" json:"name,omitempty"`
}
