// internal/model/list.go
package model

import "time"

type List struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ListMembership struct {
	ListID    int       `db:"list_id" json:"list_id"`
	ContactID int       `db:"contact_id" json:"contact_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ListStats struct {
	TotalContacts int `json:"totalContacts"`
}

type ListWithStats struct {
	List
	Stats    ListStats  `json:"stats"`
	Contacts []*Contact `json:"contacts,omitempty"`
}
