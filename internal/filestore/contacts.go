// internal/filestore/contacts.go
package filestore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

// newestFirst orders by created_at desc, then id desc.
func newestFirst(aAt, bAt time.Time, aID, bID int) int {
	if c := bAt.Compare(aAt); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

type ContactRepository struct {
	s *Store
}

func emailTaken(d *dataset, userID, exceptID int, email string) bool {
	for _, c := range d.Contacts {
		if c.UserID == userID && c.ID != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (r *ContactRepository) Create(_ context.Context, c *model.Contact) error {
	return r.s.update(func(d *dataset) error {
		if emailTaken(d, c.UserID, 0, c.Email) {
			return appErrors.NewConflict("Email already exists")
		}
		now := time.Now()
		c.ID = d.nextID("contacts")
		c.CreatedAt, c.UpdatedAt = now, now
		if c.Tags == nil {
			c.Tags = model.Tags{}
		}
		d.Contacts[c.ID] = cloneContact(c)
		return nil
	})
}

func (r *ContactRepository) GetByID(_ context.Context, id int) (*model.Contact, error) {
	var out *model.Contact
	err := r.s.view(func(d *dataset) error {
		c, ok := d.Contacts[id]
		if !ok {
			return appErrors.NewNotFound("contact", id)
		}
		out = cloneContact(c)
		return nil
	})
	return out, err
}

func (r *ContactRepository) List(_ context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	out := []*model.Contact{}
	err := r.s.view(func(d *dataset) error {
		for _, c := range d.Contacts {
			if f.Matches(c) {
				out = append(out, cloneContact(c))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Contact) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*model.Contact{}, err
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (r *ContactRepository) Count(_ context.Context, userID int) (int, error) {
	n := 0
	err := r.s.view(func(d *dataset) error {
		for _, c := range d.Contacts {
			if c.UserID == userID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ContactRepository) Update(_ context.Context, c *model.Contact) error {
	return r.s.update(func(d *dataset) error {
		stored, ok := d.Contacts[c.ID]
		if !ok {
			return appErrors.NewNotFound("contact", c.ID)
		}
		if emailTaken(d, stored.UserID, c.ID, c.Email) {
			return appErrors.NewConflict("Email already exists")
		}
		c.UpdatedAt = time.Now()
		stored.Email = c.Email
		stored.Name = c.Name
		stored.Tags = append(model.Tags{}, c.Tags...)
		stored.UpdatedAt = c.UpdatedAt
		return nil
	})
}

// Delete drops the contact and its memberships. Delivery records keep their
// email snapshot.
func (r *ContactRepository) Delete(_ context.Context, id int) error {
	return r.s.update(func(d *dataset) error {
		delete(d.Contacts, id)
		d.Members = slices.DeleteFunc(d.Members, func(m model.ListMembership) bool {
			return m.ContactID == id
		})
		return nil
	})
}

var _ repository.ContactRepositoryInterface = (*ContactRepository)(nil)

type ListRepository struct {
	s *Store
}

func (r *ListRepository) Create(_ context.Context, l *model.List) error {
	return r.s.update(func(d *dataset) error {
		now := time.Now()
		l.ID = d.nextID("lists")
		l.CreatedAt, l.UpdatedAt = now, now
		d.Lists[l.ID] = clone(l)
		return nil
	})
}

func (r *ListRepository) GetByID(_ context.Context, id int) (*model.List, error) {
	var out *model.List
	err := r.s.view(func(d *dataset) error {
		l, ok := d.Lists[id]
		if !ok {
			return appErrors.NewNotFound("list", id)
		}
		out = clone(l)
		return nil
	})
	return out, err
}

func (r *ListRepository) ListByUser(_ context.Context, userID int) ([]*model.List, error) {
	out := []*model.List{}
	err := r.s.view(func(d *dataset) error {
		for _, l := range d.Lists {
			if l.UserID == userID {
				out = append(out, clone(l))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.List) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, err
}

func (r *ListRepository) Update(_ context.Context, l *model.List) error {
	return r.s.update(func(d *dataset) error {
		stored, ok := d.Lists[l.ID]
		if !ok {
			return appErrors.NewNotFound("list", l.ID)
		}
		l.UpdatedAt = time.Now()
		stored.Name = l.Name
		stored.Description = l.Description
		stored.UpdatedAt = l.UpdatedAt
		return nil
	})
}

func (r *ListRepository) Delete(_ context.Context, id int) error {
	return r.s.update(func(d *dataset) error {
		delete(d.Lists, id)
		d.Members = slices.DeleteFunc(d.Members, func(m model.ListMembership) bool {
			return m.ListID == id
		})
		for _, c := range d.Campaigns {
			if c.ListID != nil && *c.ListID == id {
				c.ListID = nil
			}
		}
		return nil
	})
}

func (r *ListRepository) AddMember(_ context.Context, listID, contactID int) error {
	return r.s.update(func(d *dataset) error {
		if _, ok := d.Lists[listID]; !ok {
			return appErrors.NewNotFound("list", listID)
		}
		if _, ok := d.Contacts[contactID]; !ok {
			return appErrors.NewNotFound("contact", contactID)
		}
		for _, m := range d.Members {
			if m.ListID == listID && m.ContactID == contactID {
				return nil
			}
		}
		d.Members = append(d.Members, model.ListMembership{ListID: listID, ContactID: contactID, CreatedAt: time.Now()})
		return nil
	})
}

func (r *ListRepository) RemoveMember(_ context.Context, listID, contactID int) error {
	return r.s.update(func(d *dataset) error {
		d.Members = slices.DeleteFunc(d.Members, func(m model.ListMembership) bool {
			return m.ListID == listID && m.ContactID == contactID
		})
		return nil
	})
}

func (r *ListRepository) Members(_ context.Context, listID int) ([]*model.Contact, error) {
	out := []*model.Contact{}
	err := r.s.view(func(d *dataset) error {
		for _, m := range d.Members {
			if m.ListID != listID {
				continue
			}
			if c, ok := d.Contacts[m.ContactID]; ok {
				out = append(out, cloneContact(c))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Contact) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, err
}

func (r *ListRepository) CountMembers(_ context.Context, listID int) (int, error) {
	n := 0
	err := r.s.view(func(d *dataset) error {
		for _, m := range d.Members {
			if m.ListID == listID {
				n++
			}
		}
		return nil
	})
	return n, err
}

var _ repository.ListRepositoryInterface = (*ListRepository)(nil)
