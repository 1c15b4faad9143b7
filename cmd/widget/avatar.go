package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/adapters/proxy"
	"github.com/dengun/assistant/server/usecase"
)

func avatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar",
		Short: "Start a video avatar conversation and print its URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := proxy.NewClient(cfg.ServerURL, logger)
			starter, err := usecase.NewAvatarStarter(client, usecase.AvatarConfig{
				ReplicaID: cfg.ReplicaID,
				PersonaID: cfg.PersonaID,
			}, logger)
			if err != nil {
				return fmt.Errorf("avatar not configured: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Starting avatar conversation...")
			session, err := starter.Start(cmd.Context())
			if err != nil {
				logger.Error("Failed to start avatar conversation", zap.Error(err))
				return fmt.Errorf("could not start the avatar conversation: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %s\nOpen %s\n", session.ConversationID, session.SessionURL)
			return nil
		},
	}
}
