package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/service"
)

var (
	seedEmail    string
	seedPassword string
)

type demoContact struct {
	email, name string
	tags        []string
}

var demoContacts = []demoContact{
	{"alice@example.com", "Alice Smith", []string{"vip", "london"}},
	{"bob@example.com", "Bob Jones", []string{"beta"}},
	{"carol@example.com", "Carol White", []string{"vip"}},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo user with contacts, a list, a template and a draft campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.svc.Auth.Register(ctx, seedEmail, seedPassword, "Demo User")
		if err != nil {
			return fmt.Errorf("register %s: %w", seedEmail, err)
		}
		userID := res.User.ID

		list, err := e.svc.Lists.Create(ctx, userID, service.ListInput{Name: ptr("Newsletter"), Description: ptr("Demo subscribers")})
		if err != nil {
			return err
		}
		for _, dc := range demoContacts {
			tags := dc.tags
			c, err := e.svc.Contacts.Create(ctx, userID, service.ContactInput{Email: ptr(dc.email), Name: ptr(dc.name), Tags: &tags})
			if appErrors.IsConflict(err) {
				continue
			}
			if err != nil {
				return err
			}
			if err := e.svc.Lists.AddContact(ctx, userID, list.ID, c.ID); err != nil {
				return err
			}
		}

		tpl, err := e.svc.Templates.Create(ctx, userID, service.TemplateInput{
			Name:        ptr("Welcome"),
			Subject:     ptr("Welcome, {{name}}"),
			HTMLContent: ptr("<h1>Hi {{name}}</h1><p>Thanks for joining. Your first tag is {{tag1}}.</p>"),
			PlainText:   ptr("Hi {{name}}, thanks for joining."),
		})
		if err != nil {
			return err
		}
		camp, err := e.svc.Campaigns.CreateCampaign(ctx, userID, service.CampaignInput{
			Name:       ptr("Welcome series"),
			TemplateID: &tpl.ID,
			ListID:     &list.ID,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Seeded user %s (id %d), list %d, template %d, campaign %d\n", seedEmail, userID, list.ID, tpl.ID, camp.ID)
		return nil
	},
}

func ptr[T any](v T) *T { return &v }

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "demo@example.com", "demo user email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "demo user password")
	rootCmd.AddCommand(seedCmd)
}
