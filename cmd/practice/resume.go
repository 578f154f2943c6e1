package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/timeutil"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the active practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator()
		defer orch.Close()

		ctx := cmd.Context()

		if !orch.Initialize(ctx) {
			return fmt.Errorf("no session to resume")
		}

		if orch.NeedsRecovery() {
			if data := orch.GetRecoveryData(ctx); data != nil {
				cmd.Printf("Recovered session %s (paused for %s)\n",
					data.SessionID,
					timeutil.FormatMMSS(data.PausedSeconds),
				)

				if data.Code != "" {
					cmd.Printf("Restored %d bytes of %s code\n", len(data.Code), data.Language)
				}
			}

			orch.ResumeSession(ctx)
		}

		return runView(orch)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
