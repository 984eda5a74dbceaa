// internal/service/contact_service.go
package service

import (
	"context"
	"net/mail"
	"strings"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

const (
	defaultContactLimit = 100
	maxContactLimit     = 1000
)

// ContactInput carries create and partial-update fields; nil means unset.
type ContactInput struct {
	Email *string   `json:"email"`
	Name  *string   `json:"name"`
	Tags  *[]string `json:"tags"`
}

type ContactService struct {
	Contacts repository.ContactRepositoryInterface
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", appErrors.NewValidation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", appErrors.NewValidation("Invalid email address")
	}
	return email, nil
}

// List applies search and tag filters; limit defaults to 100.
func (s *ContactService) List(ctx context.Context, userID int, f model.ContactFilter) ([]*model.Contact, error) {
	f.UserID = userID
	if f.Limit <= 0 {
		f.Limit = defaultContactLimit
	}
	if f.Limit > maxContactLimit {
		f.Limit = maxContactLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Contacts.List(ctx, f)
}

// Get hides other users' contacts behind NotFound.
func (s *ContactService) Get(ctx context.Context, userID, id int) (*model.Contact, error) {
	c, err := s.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, appErrors.NewNotFound("contact", id)
	}
	return c, nil
}

func (s *ContactService) Create(ctx context.Context, userID int, in ContactInput) (*model.Contact, error) {
	email, err := normalizeEmail(deref(in.Email))
	if err != nil {
		return nil, err
	}
	c := &model.Contact{
		UserID: userID,
		Email:  email,
		Name:   trimmed(in.Name),
		Tags:   model.Tags{},
	}
	if in.Tags != nil {
		c.Tags = model.NewTags(*in.Tags)
	}
	if err := s.Contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, userID, id int, in ContactInput) (*model.Contact, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		c.Email = email
	}
	if in.Name != nil {
		c.Name = trimmed(in.Name)
	}
	if in.Tags != nil {
		c.Tags = model.NewTags(*in.Tags)
	}
	if err := s.Contacts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, id int) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.Contacts.Delete(ctx, id)
}

func (s *ContactService) Count(ctx context.Context, userID int) (int, error) {
	return s.Contacts.Count(ctx, userID)
}
