package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/session"
)

var endCompleted bool

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the active practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator()
		defer orch.Close()

		ctx := cmd.Context()

		if !orch.Initialize(ctx) {
			return fmt.Errorf("no session to end")
		}

		reason := session.ReasonUserRequest
		if endCompleted {
			reason = session.ReasonCompleted
		}

		if !orch.EndSession(ctx, reason) {
			return fmt.Errorf("session could not be ended")
		}

		cmd.Println("Session ended.")
		return nil
	},
}

func init() {
	endCmd.Flags().BoolVar(&endCompleted, "completed", false, "mark the session as successfully completed")
	rootCmd.AddCommand(endCmd)
}
