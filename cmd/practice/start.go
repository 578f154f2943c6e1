package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/session"
	"codeberg.org/algopatterns/client/internal/tui"
)

var (
	startType       string
	startQuestion   string
	startTitle      string
	startRoadmap    string
	startDifficulty string
	startLanguage   string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator()
		defer orch.Close()

		ctx := cmd.Context()

		// a session left running on the backend would be silently
		// abandoned by starting a new one; make that explicit instead
		if orch.Initialize(ctx) {
			current := orch.GetCurrentSession()
			return fmt.Errorf("session %s is still %s, resume or end it first", current.ID, current.State)
		}

		_, err := orch.StartSession(ctx, session.StartConfig{
			Type:          session.Type(startType),
			QuestionID:    startQuestion,
			QuestionTitle: startTitle,
			RoadmapID:     startRoadmap,
			Difficulty:    startDifficulty,
			Language:      startLanguage,
		})
		if err != nil {
			return err
		}

		return runView(orch)
	},
}

// hands the terminal over to the live status view
func runView(orch *session.Orchestrator) error {
	app := tui.NewApp(orch)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running status view: %w", err)
	}

	return nil
}

func init() {
	startCmd.Flags().StringVarP(&startType, "type", "t", string(session.TypePractice), "session type (daily_challenge, roadmap_challenge, practice, assessment)")
	startCmd.Flags().StringVarP(&startQuestion, "question", "q", "", "question identifier")
	startCmd.Flags().StringVar(&startTitle, "title", "", "question title")
	startCmd.Flags().StringVar(&startRoadmap, "roadmap", "", "roadmap identifier")
	startCmd.Flags().StringVar(&startDifficulty, "difficulty", "", "question difficulty")
	startCmd.Flags().StringVarP(&startLanguage, "language", "l", "", "editor language")

	rootCmd.AddCommand(startCmd)
}
