// internal/service/share_service.go
package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

type ShareInput struct {
	ResourceType    string `json:"resourceType"`
	ResourceID      int    `json:"resourceId"`
	SharedWithEmail string `json:"sharedWithEmail"`
	Permission      string `json:"permission"`
}

// SharedWithMe groups incoming shares by kind. Each share carries the
// owner's email and name.
type SharedWithMe struct {
	Lists     []*model.Share `json:"lists"`
	Templates []*model.Share `json:"templates"`
	Campaigns []*model.Share `json:"campaigns"`
}

type ShareService struct {
	Shares repository.ShareRepositoryInterface
	Users  repository.UserRepositoryInterface
	Access *AccessService
}

// Share grants or replaces a permission and returns every share of the
// resource.
func (s *ShareService) Share(ctx context.Context, userID int, in ShareInput) ([]*model.Share, error) {
	if in.ResourceType == "" || in.ResourceID <= 0 || strings.TrimSpace(in.SharedWithEmail) == "" {
		return nil, appErrors.NewValidation("Resource type, resource ID, and shared with email are required")
	}
	kind, err := model.ParseResourceKind(in.ResourceType)
	if err != nil {
		return nil, appErrors.NewValidation("%s", err.Error())
	}
	perm, err := model.ParsePermission(in.Permission)
	if err != nil {
		return nil, appErrors.NewValidation("%s", err.Error())
	}

	if err := s.Access.RequireOwner(ctx, userID, kind, in.ResourceID, "You can only share resources you own"); err != nil {
		return nil, err
	}

	target, err := s.Users.GetByEmail(ctx, strings.TrimSpace(in.SharedWithEmail))
	if appErrors.IsNotFound(err) {
		return nil, appErrors.NewNotFound("user with that email", 0)
	}
	if err != nil {
		return nil, err
	}
	if target.ID == userID {
		return nil, appErrors.NewValidation("Cannot share with yourself")
	}

	share := &model.Share{
		ResourceType: kind,
		ResourceID:   in.ResourceID,
		OwnerID:      userID,
		SharedWithID: target.ID,
		Permission:   perm,
	}
	if err := s.Shares.Upsert(ctx, share); err != nil {
		return nil, err
	}
	return s.Shares.ListForResource(ctx, kind, in.ResourceID, userID)
}

func (s *ShareService) ListForResource(ctx context.Context, userID int, resourceType string, resourceID int) ([]*model.Share, error) {
	kind, err := model.ParseResourceKind(resourceType)
	if err != nil {
		return nil, appErrors.NewValidation("%s", err.Error())
	}
	if err := s.Access.RequireOwner(ctx, userID, kind, resourceID, "Only owners can view shares"); err != nil {
		return nil, err
	}
	return s.Shares.ListForResource(ctx, kind, resourceID, userID)
}

// Delete removes a share the caller created.
func (s *ShareService) Delete(ctx context.Context, userID, shareID int) error {
	share, err := s.Shares.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.OwnerID != userID {
		return appErrors.NewForbidden("Only owners can remove shares")
	}
	return s.Shares.Delete(ctx, shareID)
}

func (s *ShareService) SharedWithMe(ctx context.Context, userID int) (*SharedWithMe, error) {
	out := &SharedWithMe{}
	for _, kind := range model.ResourceKinds {
		shares, err := s.Shares.ListSharedWith(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		switch kind {
		case model.KindList:
			out.Lists = shares
		case model.KindTemplate:
			out.Templates = shares
		case model.KindCampaign:
			out.Campaigns = shares
		}
	}
	return out, nil
}
