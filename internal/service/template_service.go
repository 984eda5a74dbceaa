// internal/service/template_service.go
package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

var mergeTagPattern = regexp.MustCompile(`(?i)\{\{(email|name|tag([1-9]\d*)|tag:([^}]*))\}\}`)

// RenderMergeTags substitutes {{email}}, {{name}}, {{tagN}} (1-indexed) and
// {{tag:<tag>}} in one pass, so substituted values are never expanded again.
// Placeholders that resolve to nothing are left as written.
func RenderMergeTags(content string, c *model.Contact) string {
	if !strings.Contains(content, "{{") {
		return content
	}
	return mergeTagPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := mergeTagPattern.FindStringSubmatch(match)
		switch {
		case strings.EqualFold(m[1], "email"):
			return c.Email
		case strings.EqualFold(m[1], "name"):
			return c.Name
		case m[2] != "":
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return match
			}
			if v, ok := c.Tags.At(n); ok {
				return v
			}
		case len(m[1]) > 4 && strings.EqualFold(m[1][:4], "tag:"):
			if v := c.Tags.Lookup(m[3]); v != "" {
				return v
			}
		}
		return match
	})
}

// TemplateInput carries create and partial-update fields; nil means unset.
type TemplateInput struct {
	Name         *string         `json:"name"`
	Subject      *string         `json:"subject"`
	HTMLContent  *string         `json:"html_content"`
	PlainText    *string         `json:"plain_text"`
	EditorBlocks json.RawMessage `json:"editor_blocks"`
}

type TemplateService struct {
	Templates repository.TemplateRepositoryInterface
	Access    *AccessService
}

// List returns the user's templates followed by those shared with them.
func (s *TemplateService) List(ctx context.Context, userID int) ([]*model.Template, error) {
	templates, err := s.Templates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids, err := s.Access.SharedIDs(ctx, userID, model.KindTemplate)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		t, err := s.Templates.GetByID(ctx, id)
		if appErrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, userID, id int) (*model.Template, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindTemplate, id, model.PermissionView); err != nil {
		return nil, err
	}
	return s.Templates.GetByID(ctx, id)
}

func (s *TemplateService) Create(ctx context.Context, userID int, in TemplateInput) (*model.Template, error) {
	t := &model.Template{
		UserID:       userID,
		Name:         trimmed(in.Name),
		Subject:      trimmed(in.Subject),
		HTMLContent:  deref(in.HTMLContent),
		PlainText:    deref(in.PlainText),
		EditorBlocks: in.EditorBlocks,
	}
	if t.Name == "" || t.Subject == "" || strings.TrimSpace(t.HTMLContent) == "" {
		return nil, appErrors.NewValidation("Name, subject, and HTML content are required")
	}
	if err := s.Templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Update(ctx context.Context, userID, id int, in TemplateInput) (*model.Template, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindTemplate, id, model.PermissionEdit); err != nil {
		return nil, err
	}
	t, err := s.Templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		t.Name = trimmed(in.Name)
	}
	if in.Subject != nil {
		t.Subject = trimmed(in.Subject)
	}
	if in.HTMLContent != nil {
		t.HTMLContent = *in.HTMLContent
	}
	if in.PlainText != nil {
		t.PlainText = *in.PlainText
	}
	if in.EditorBlocks != nil {
		t.EditorBlocks = in.EditorBlocks
	}
	if t.Name == "" || t.Subject == "" || strings.TrimSpace(t.HTMLContent) == "" {
		return nil, appErrors.NewValidation("Name, subject, and HTML content are required")
	}
	if err := s.Templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, userID, id int) error {
	if err := s.Access.RequireOwner(ctx, userID, model.KindTemplate, id, "Only owners can delete templates"); err != nil {
		return err
	}
	return s.Templates.Delete(ctx, id)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func trimmed(p *string) string {
	return strings.TrimSpace(deref(p))
}
