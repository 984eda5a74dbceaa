// internal/filestore/store.go
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

// userRecord keeps the password hash, which model.User hides from JSON.
type userRecord struct {
	model.User
	PasswordHash string `json:"password_hash"`
}

// dataset is the whole document written to disk.
type dataset struct {
	Seq        map[string]int                `json:"seq"`
	Users      map[int]*userRecord           `json:"users"`
	Contacts   map[int]*model.Contact        `json:"contacts"`
	Lists      map[int]*model.List           `json:"lists"`
	Members    []model.ListMembership        `json:"list_members"`
	Templates  map[int]*model.Template       `json:"templates"`
	Campaigns  map[int]*model.Campaign       `json:"campaigns"`
	Deliveries map[int]*model.DeliveryRecord `json:"email_tracking"`
	Settings   map[string]string             `json:"settings"`
	Shares     map[int]*model.Share          `json:"shares"`
}

func newDataset() *dataset {
	return &dataset{
		Seq:        map[string]int{},
		Users:      map[int]*userRecord{},
		Contacts:   map[int]*model.Contact{},
		Lists:      map[int]*model.List{},
		Templates:  map[int]*model.Template{},
		Campaigns:  map[int]*model.Campaign{},
		Deliveries: map[int]*model.DeliveryRecord{},
		Settings:   map[string]string{},
		Shares:     map[int]*model.Share{},
	}
}

// fill replaces nil maps left by an older or hand-edited file.
func (d *dataset) fill() {
	empty := newDataset()
	if d.Seq == nil {
		d.Seq = empty.Seq
	}
	if d.Users == nil {
		d.Users = empty.Users
	}
	if d.Contacts == nil {
		d.Contacts = empty.Contacts
	}
	if d.Lists == nil {
		d.Lists = empty.Lists
	}
	if d.Templates == nil {
		d.Templates = empty.Templates
	}
	if d.Campaigns == nil {
		d.Campaigns = empty.Campaigns
	}
	if d.Deliveries == nil {
		d.Deliveries = empty.Deliveries
	}
	if d.Settings == nil {
		d.Settings = empty.Settings
	}
	if d.Shares == nil {
		d.Shares = empty.Shares
	}
}

func (d *dataset) nextID(table string) int {
	d.Seq[table]++
	return d.Seq[table]
}

// Store holds every table in memory behind one mutex and rewrites a single
// JSON file after each mutation, before the lock is released.
type Store struct {
	mu   sync.Mutex
	path string
	data *dataset
}

// Open loads path, or starts empty when the file does not exist yet.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{path: path, data: newDataset()}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, s.data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	s.data.fill()
	return s, nil
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// view runs fn under the lock without writing.
func (s *Store) view(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// update runs fn under the lock and flushes when it succeeds. fn must validate
// before it mutates; a flush error leaves memory ahead of disk and is returned.
func (s *Store) update(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.data); err != nil {
		return err
	}
	return s.flush()
}

func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("flush store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	return nil
}

// Repositories exposes the store through the same interfaces as PostgreSQL.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Contacts:   &ContactRepository{s: s},
		Lists:      &ListRepository{s: s},
		Templates:  &TemplateRepository{s: s},
		Campaigns:  &CampaignRepository{s: s},
		Deliveries: &DeliveryRepository{s: s},
		Settings:   &SettingRepository{s: s},
		Users:      &UserRepository{s: s},
		Shares:     &ShareRepository{s: s},
	}
}

// clone returns a shallow copy so callers never hold pointers into the store.
func clone[T any](v *T) *T {
	c := *v
	return &c
}

func cloneContact(c *model.Contact) *model.Contact {
	out := clone(c)
	out.Tags = append(model.Tags{}, c.Tags...)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
