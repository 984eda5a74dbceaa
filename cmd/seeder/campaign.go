package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Campaign maintenance",
}

var campaignFinishCmd = &cobra.Command{
	Use:   "finish <campaign-id>",
	Short: "Mark a campaign stuck in sending as sent",
	Long:  `Counts the delivery records that reached the provider and moves the campaign from sending to sent. Nothing is re-sent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid campaign id %q", args[0])
		}
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		sent, err := e.svc.Campaigns.FinishSend(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Campaign %d marked sent (%d delivered to the provider)\n", id, sent)
		return nil
	},
}

func init() {
	campaignCmd.AddCommand(campaignFinishCmd)
	rootCmd.AddCommand(campaignCmd)
}
