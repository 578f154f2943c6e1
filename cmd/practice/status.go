package main

import (
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/timeutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator()
		defer orch.Close()

		if !orch.Initialize(cmd.Context()) {
			cmd.Println("no active session")
			return nil
		}

		s := orch.GetCurrentSession()

		cmd.Printf("Session: %s\n", s.ID)
		cmd.Printf("Type: %s\n", s.Type)
		cmd.Printf("State: %s\n", s.State)

		if s.QuestionTitle != "" {
			cmd.Printf("Question: %s\n", s.QuestionTitle)
		}

		cmd.Printf("Started: %s\n", s.StartTime.Format(time.RFC3339))
		cmd.Printf("Elapsed: %s\n", timeutil.FormatHHMMSS(timeutil.ElapsedSeconds(s.StartTime)))
		cmd.Printf("Edits: %d\n", s.Analytics.CodeChanges)
		cmd.Printf("Test runs: %d\n", s.Analytics.TestsRun)
		cmd.Printf("Hints: %d\n", s.Analytics.HintsUsed)
		cmd.Printf("Attempts: %d\n", s.Analytics.AttemptsCount)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
