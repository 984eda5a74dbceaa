// internal/filestore/accounts.go
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

type SettingRepository struct {
	s *Store
}

func (r *SettingRepository) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	var ok bool
	err := r.s.view(func(d *dataset) error {
		value, ok = d.Settings[key]
		return nil
	})
	return value, ok, err
}

func (r *SettingRepository) Set(_ context.Context, key, value string) error {
	return r.s.update(func(d *dataset) error {
		d.Settings[key] = value
		return nil
	})
}

var _ repository.SettingRepositoryInterface = (*SettingRepository)(nil)

type UserRepository struct {
	s *Store
}

func toUser(u *userRecord) *model.User {
	out := u.User
	out.PasswordHash = u.PasswordHash
	return &out
}

func findUserByEmail(d *dataset, email string) *userRecord {
	for _, u := range d.Users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *model.User) error {
	return r.s.update(func(d *dataset) error {
		if findUserByEmail(d, u.Email) != nil {
			return appErrors.NewConflict("User already exists")
		}
		now := time.Now()
		u.ID = d.nextID("users")
		u.CreatedAt, u.UpdatedAt = now, now
		d.Users[u.ID] = &userRecord{User: *u, PasswordHash: u.PasswordHash}
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id int) (*model.User, error) {
	var out *model.User
	err := r.s.view(func(d *dataset) error {
		u, ok := d.Users[id]
		if !ok {
			return appErrors.NewNotFound("user", id)
		}
		out = toUser(u)
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.view(func(d *dataset) error {
		u := findUserByEmail(d, email)
		if u == nil {
			return appErrors.NewNotFound("user", 0)
		}
		out = toUser(u)
		return nil
	})
	return out, err
}

func (r *UserRepository) Update(_ context.Context, u *model.User) error {
	return r.s.update(func(d *dataset) error {
		if _, ok := d.Users[u.ID]; !ok {
			return appErrors.NewNotFound("user", u.ID)
		}
		u.UpdatedAt = time.Now()
		d.Users[u.ID] = &userRecord{User: *u, PasswordHash: u.PasswordHash}
		return nil
	})
}

var _ repository.UserRepositoryInterface = (*UserRepository)(nil)

type ShareRepository struct {
	s *Store
}

func (r *ShareRepository) Upsert(_ context.Context, s *model.Share) error {
	return r.s.update(func(d *dataset) error {
		for _, existing := range d.Shares {
			if existing.ResourceType == s.ResourceType && existing.ResourceID == s.ResourceID && existing.SharedWithID == s.SharedWithID {
				existing.Permission = s.Permission
				existing.OwnerID = s.OwnerID
				s.ID, s.CreatedAt = existing.ID, existing.CreatedAt
				return nil
			}
		}
		s.ID = d.nextID("shares")
		s.CreatedAt = time.Now()
		stored := clone(s)
		stored.Email, stored.Name = "", ""
		d.Shares[s.ID] = stored
		return nil
	})
}

func (r *ShareRepository) GetByID(_ context.Context, id int) (*model.Share, error) {
	var out *model.Share
	err := r.s.view(func(d *dataset) error {
		s, ok := d.Shares[id]
		if !ok {
			return appErrors.NewNotFound("share", id)
		}
		out = clone(s)
		return nil
	})
	return out, err
}

func (r *ShareRepository) Find(_ context.Context, kind model.ResourceKind, resourceID, userID int) (*model.Share, error) {
	var out *model.Share
	err := r.s.view(func(d *dataset) error {
		for _, s := range d.Shares {
			if s.ResourceType == kind && s.ResourceID == resourceID && s.SharedWithID == userID {
				out = clone(s)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// joined copies s and fills Email and Name from the user with id.
func joined(d *dataset, s *model.Share, userID int) *model.Share {
	out := clone(s)
	if u, ok := d.Users[userID]; ok {
		out.Email, out.Name = u.Email, u.Name
	}
	return out
}

func (r *ShareRepository) ListForResource(_ context.Context, kind model.ResourceKind, resourceID, ownerID int) ([]*model.Share, error) {
	out := []*model.Share{}
	err := r.s.view(func(d *dataset) error {
		for _, s := range d.Shares {
			if s.ResourceType == kind && s.ResourceID == resourceID && s.OwnerID == ownerID {
				out = append(out, joined(d, s, s.SharedWithID))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Share) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *ShareRepository) ListSharedWith(_ context.Context, userID int, kind model.ResourceKind) ([]*model.Share, error) {
	out := []*model.Share{}
	err := r.s.view(func(d *dataset) error {
		for _, s := range d.Shares {
			if s.SharedWithID == userID && s.ResourceType == kind {
				out = append(out, joined(d, s, s.OwnerID))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Share) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, err
}

func (r *ShareRepository) Delete(_ context.Context, id int) error {
	return r.s.update(func(d *dataset) error {
		delete(d.Shares, id)
		return nil
	})
}

var _ repository.ShareRepositoryInterface = (*ShareRepository)(nil)
