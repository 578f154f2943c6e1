package main

import (
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/auth"
	"codeberg.org/algopatterns/client/internal/gateway"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past practice sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := auth.NewStaticTokenSource(cfg.AuthToken)
		client := gateway.NewClient(cfg, tokens)

		sessions, err := client.ListSessions(cmd.Context(), historyLimit, false)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			cmd.Println("no past sessions")
			return nil
		}

		for _, s := range sessions {
			title := s.QuestionTitle
			if title == "" {
				title = "-"
			}

			cmd.Printf("%s  %-10s  %-18s  %s\n",
				s.StartTime.Format(time.DateOnly),
				s.State,
				s.SessionType,
				title,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum sessions to list")
	rootCmd.AddCommand(historyCmd)
}
