package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <password> [name]",
	Short: "Register a user",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		name := ""
		if len(args) == 3 {
			name = args[2]
		}
		res, err := e.svc.Auth.Register(cmd.Context(), args[0], args[1], name)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d\n", res.User.ID)
		return nil
	},
}

func setActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: use + " a user's login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.svc.Auth.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Printf("%s: active=%t\n", args[0], active)
			return nil
		},
	}
}

func init() {
	userCmd.AddCommand(userCreateCmd, setActiveCmd("activate", true), setActiveCmd("deactivate", false))
	rootCmd.AddCommand(userCmd)
}
