// internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/mailer-backend/internal/model"
)

type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id int) (*model.Contact, error)
	List(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error)
	Count(ctx context.Context, userID int) (int, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id int) error
}

type ListRepositoryInterface interface {
	Create(ctx context.Context, l *model.List) error
	GetByID(ctx context.Context, id int) (*model.List, error)
	ListByUser(ctx context.Context, userID int) ([]*model.List, error)
	Update(ctx context.Context, l *model.List) error
	Delete(ctx context.Context, id int) error

	// Membership. AddMember is a no-op for an existing pair.
	AddMember(ctx context.Context, listID, contactID int) error
	RemoveMember(ctx context.Context, listID, contactID int) error
	Members(ctx context.Context, listID int) ([]*model.Contact, error)
	CountMembers(ctx context.Context, listID int) (int, error)
}

type TemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.Template) error
	GetByID(ctx context.Context, id int) (*model.Template, error)
	ListByUser(ctx context.Context, userID int) ([]*model.Template, error)
	Update(ctx context.Context, t *model.Template) error
	Delete(ctx context.Context, id int) error
}

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	// ListByUser returns newest first; limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID, limit int) ([]*model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	// Delete also removes the campaign's delivery records.
	Delete(ctx context.Context, id int) error

	// TransitionStatus moves the campaign from -> to only if it is currently
	// in from. ok is false when another status was found.
	TransitionStatus(ctx context.Context, id int, from, to model.CampaignStatus) (ok bool, err error)
	// MarkSent enters the sent state and adds sent to sent_count.
	MarkSent(ctx context.Context, id, sent int, at time.Time) error
}

type DeliveryRepositoryInterface interface {
	Create(ctx context.Context, r *model.DeliveryRecord) error
	GetByID(ctx context.Context, id int) (*model.DeliveryRecord, error)
	// FindByMessageID returns nil, nil when no record carries messageID.
	FindByMessageID(ctx context.Context, messageID string) (*model.DeliveryRecord, error)
	Update(ctx context.Context, id int, u model.DeliveryUpdate) (*model.DeliveryRecord, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*model.DeliveryRecord, error)
	CountByStatus(ctx context.Context, campaignID int) (model.DeliveryStats, error)
}

type SettingRepositoryInterface interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
}

type ShareRepositoryInterface interface {
	// Upsert replaces the permission of an existing (kind, resource, user) share.
	Upsert(ctx context.Context, s *model.Share) error
	GetByID(ctx context.Context, id int) (*model.Share, error)
	// Find returns nil, nil when resourceID is not shared with userID.
	Find(ctx context.Context, kind model.ResourceKind, resourceID, userID int) (*model.Share, error)
	// ListForResource joins the grantee's email and name.
	ListForResource(ctx context.Context, kind model.ResourceKind, resourceID, ownerID int) ([]*model.Share, error)
	// ListSharedWith joins the owner's email and name.
	ListSharedWith(ctx context.Context, userID int, kind model.ResourceKind) ([]*model.Share, error)
	Delete(ctx context.Context, id int) error
}

// Repositories bundles one storage backend.
type Repositories struct {
	Contacts   ContactRepositoryInterface
	Lists      ListRepositoryInterface
	Templates  TemplateRepositoryInterface
	Campaigns  CampaignRepositoryInterface
	Deliveries DeliveryRepositoryInterface
	Settings   SettingRepositoryInterface
	Users      UserRepositoryInterface
	Shares     ShareRepositoryInterface
}

// NewPostgres wires the SQL repositories onto one connection pool.
func NewPostgres(db *sql.DB) *Repositories {
	return &Repositories{
		Contacts:   &ContactRepository{DB: db},
		Lists:      &ListRepository{DB: db},
		Templates:  &TemplateRepository{DB: db},
		Campaigns:  &CampaignRepository{DB: db},
		Deliveries: &DeliveryRepository{DB: db},
		Settings:   &SettingRepository{DB: db},
		Users:      &UserRepository{DB: db},
		Shares:     &ShareRepository{DB: db},
	}
}
