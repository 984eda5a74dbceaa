package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unclebandit/mailer-backend/internal/config"
	"github.com/unclebandit/mailer-backend/internal/logger"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/webhook"
)

var replaySeverity string

// replayCmd publishes a signed Mailgun-shaped event onto the provider events
// queue, for exercising the worker without a real provider.
var replayCmd = &cobra.Command{
	Use:   "replay-event <message-id> <event>",
	Short: "Publish a signed provider event to the worker queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is not set")
		}
		log := logger.NewJSONLogger(cfg.LogLevel)

		ts := strconv.FormatInt(time.Now().Unix(), 10)
		token := uuid.NewString()
		body, err := json.Marshal(map[string]any{
			"signature": map[string]string{
				"timestamp": ts,
				"token":     token,
				"signature": webhook.Sign(cfg.WebhookSigningKey, ts, token),
			},
			"event-data": map[string]any{
				"event":    args[1],
				"severity": replaySeverity,
				"message":  map[string]any{"headers": map[string]string{"message-id": args[0]}},
			},
		})
		if err != nil {
			return err
		}

		q, err := queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			return err
		}
		defer q.Close()
		if err := q.PublishRaw(queue.ProviderEventsQueue, "application/json", body); err != nil {
			return err
		}
		fmt.Printf("Published %s for %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replaySeverity, "severity", "", "severity for failed events (permanent|temporary)")
	rootCmd.AddCommand(replayCmd)
}
