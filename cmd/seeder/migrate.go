package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema (DATABASE_URL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		if e.storage.DB == nil {
			return fmt.Errorf("DATABASE_URL is not set, the file store needs no migration")
		}
		fmt.Println("Schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
