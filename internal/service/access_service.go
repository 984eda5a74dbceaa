// internal/service/access_service.go
package service

import (
	"context"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

// Access is a user's relationship to one shareable resource.
type Access struct {
	OwnerID    int
	IsOwner    bool
	Permission model.Permission
}

// AccessService answers "may this user do that to this resource" for lists,
// templates and campaigns. Owners hold every permission; everyone else holds
// what their share grants.
type AccessService struct {
	Lists     repository.ListRepositoryInterface
	Templates repository.TemplateRepositoryInterface
	Campaigns repository.CampaignRepositoryInterface
	Shares    repository.ShareRepositoryInterface
}

func (s *AccessService) ownerOf(ctx context.Context, kind model.ResourceKind, id int) (int, error) {
	switch kind {
	case model.KindList:
		l, err := s.Lists.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return l.UserID, nil
	case model.KindTemplate:
		t, err := s.Templates.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return t.UserID, nil
	case model.KindCampaign:
		c, err := s.Campaigns.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.UserID, nil
	}
	return 0, appErrors.NewValidation("unknown resource type %q", kind)
}

// Resolve reports NotFound both for missing resources and for resources the
// user can neither own nor see through a share.
func (s *AccessService) Resolve(ctx context.Context, userID int, kind model.ResourceKind, id int) (*Access, error) {
	ownerID, err := s.ownerOf(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if ownerID == userID {
		return &Access{OwnerID: ownerID, IsOwner: true, Permission: model.PermissionEdit}, nil
	}

	share, err := s.Shares.Find(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, appErrors.NewNotFound(kind.Singular(), id)
	}
	return &Access{OwnerID: ownerID, Permission: share.Permission}, nil
}

// Check requires need on the resource.
func (s *AccessService) Check(ctx context.Context, userID int, kind model.ResourceKind, id int, need model.Permission) (*Access, error) {
	acc, err := s.Resolve(ctx, userID, kind, id)
	if err != nil {
		return nil, err
	}
	if !acc.Permission.Allows(need) {
		return nil, appErrors.NewForbidden("You do not have %s permission on this %s", need, kind.Singular())
	}
	return acc, nil
}

// RequireOwner fails with Forbidden and msg unless userID owns the resource.
func (s *AccessService) RequireOwner(ctx context.Context, userID int, kind model.ResourceKind, id int, msg string) error {
	ownerID, err := s.ownerOf(ctx, kind, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return appErrors.NewForbidden("%s", msg)
	}
	return nil
}

// SharedIDs lists the resource ids of kind shared with userID.
func (s *AccessService) SharedIDs(ctx context.Context, userID int, kind model.ResourceKind) ([]int, error) {
	shares, err := s.Shares.ListSharedWith(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.ResourceID)
	}
	return ids, nil
}
