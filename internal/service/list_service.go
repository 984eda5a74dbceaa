// internal/service/list_service.go
package service

import (
	"context"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

type ListInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ListService struct {
	Lists    repository.ListRepositoryInterface
	Contacts repository.ContactRepositoryInterface
	Access   *AccessService
}

func (s *ListService) withStats(ctx context.Context, l *model.List) (*model.ListWithStats, error) {
	n, err := s.Lists.CountMembers(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return &model.ListWithStats{List: *l, Stats: model.ListStats{TotalContacts: n}}, nil
}

// List returns owned lists, then lists shared with the user, each with its
// member count.
func (s *ListService) List(ctx context.Context, userID int) ([]*model.ListWithStats, error) {
	lists, err := s.Lists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids, err := s.Access.SharedIDs(ctx, userID, model.KindList)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		l, err := s.Lists.GetByID(ctx, id)
		if appErrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}

	out := make([]*model.ListWithStats, 0, len(lists))
	for _, l := range lists {
		ls, err := s.withStats(ctx, l)
		if err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	return out, nil
}

// Get includes the members.
func (s *ListService) Get(ctx context.Context, userID, id int) (*model.ListWithStats, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindList, id, model.PermissionView); err != nil {
		return nil, err
	}
	l, err := s.Lists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.Lists.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ListWithStats{
		List:     *l,
		Stats:    model.ListStats{TotalContacts: len(members)},
		Contacts: members,
	}, nil
}

func (s *ListService) Create(ctx context.Context, userID int, in ListInput) (*model.List, error) {
	l := &model.List{UserID: userID, Name: trimmed(in.Name), Description: deref(in.Description)}
	if l.Name == "" {
		return nil, appErrors.NewValidation("Name is required")
	}
	if err := s.Lists.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListService) Update(ctx context.Context, userID, id int, in ListInput) (*model.List, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindList, id, model.PermissionEdit); err != nil {
		return nil, err
	}
	l, err := s.Lists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		l.Name = trimmed(in.Name)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if l.Name == "" {
		return nil, appErrors.NewValidation("Name is required")
	}
	if err := s.Lists.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListService) Delete(ctx context.Context, userID, id int) error {
	if err := s.Access.RequireOwner(ctx, userID, model.KindList, id, "Only owners can delete lists"); err != nil {
		return err
	}
	return s.Lists.Delete(ctx, id)
}

// AddContact accepts contacts owned by the caller or by the list owner.
func (s *ListService) AddContact(ctx context.Context, userID, listID, contactID int) error {
	if contactID <= 0 {
		return appErrors.NewValidation("Contact ID is required")
	}
	acc, err := s.Access.Check(ctx, userID, model.KindList, listID, model.PermissionEdit)
	if err != nil {
		return err
	}
	c, err := s.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if c.UserID != userID && c.UserID != acc.OwnerID {
		return appErrors.NewNotFound("contact", contactID)
	}
	return s.Lists.AddMember(ctx, listID, contactID)
}

func (s *ListService) RemoveContact(ctx context.Context, userID, listID, contactID int) error {
	if _, err := s.Access.Check(ctx, userID, model.KindList, listID, model.PermissionEdit); err != nil {
		return err
	}
	return s.Lists.RemoveMember(ctx, listID, contactID)
}

func (s *ListService) Count(ctx context.Context, userID int) (int, error) {
	lists, err := s.Lists.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(lists), nil
}
