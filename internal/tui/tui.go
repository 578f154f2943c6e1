// Package tui renders a live status view for the current practice session.
// It is a pure subscriber: every state change arrives through orchestrator
// events, and every user action goes back through orchestrator calls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/algopatterns/client/internal/session"
	"codeberg.org/algopatterns/client/internal/timeutil"
)

func NewApp(orch *session.Orchestrator) *Model {
	m := &Model{
		state:  StateStatus,
		orch:   orch,
		events: make(chan session.Event, 16),
	}

	// the subscriber only forwards; dropping under backpressure is fine
	// because the view re-reads the session on every tick anyway
	m.subscriberID = orch.Subscribe(func(e session.Event) {
		select {
		case m.events <- e:
		default:
		}
	})

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForEvent(m.events))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case sessionEventMsg:
		return m.handleEvent(msg.event)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg.String() {
	case "ctrl+c", "q":
		m.quit()
		return m, tea.Quit

	case "p":
		m.orch.PauseSession(ctx, "user_request")

	case "r":
		m.orch.ResumeSession(ctx)

	case "e":
		m.orch.EndSession(ctx, "user_request")
		m.quit()
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleEvent(e session.Event) (tea.Model, tea.Cmd) {
	m.lastEvent = string(e.Kind)

	switch e.Kind {
	case session.EventError:
		m.err = e.Err

	case session.EventCompleted, session.EventAbandoned:
		m.state = StateDone
	}

	return m, waitForEvent(m.events)
}

func (m *Model) quit() {
	if m.quitting {
		return
	}

	m.quitting = true

	// leaving the view with a session still running: best-effort remote
	// pause so the backend does not keep counting the session as active
	m.orch.NotifyPageHidden()
	m.orch.Unsubscribe(m.subscriberID)
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")

	current := m.orch.GetCurrentSession()
	if current == nil {
		b.WriteString(infoStyle.Render("no session running"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("press q to quit"))
		return b.String()
	}

	b.WriteString(renderField("session", shortID(current.ID)))
	b.WriteString(renderField("type", string(current.Type)))

	if current.QuestionTitle != "" {
		b.WriteString(renderField("question", current.QuestionTitle))
	}

	if current.Language != "" {
		b.WriteString(renderField("language", current.Language))
	}

	b.WriteString(renderField("state", stateBadge(current.State)))
	b.WriteString(renderField("elapsed", timerStyle.Render(elapsedLabel(current))))

	b.WriteString("\n")
	b.WriteString(renderField("edits", fmt.Sprintf("%d", current.Analytics.CodeChanges)))
	b.WriteString(renderField("test runs", fmt.Sprintf("%d", current.Analytics.TestsRun)))
	b.WriteString(renderField("hints", fmt.Sprintf("%d", current.Analytics.HintsUsed)))
	b.WriteString(renderField("attempts", fmt.Sprintf("%d", current.Analytics.AttemptsCount)))

	if m.lastEvent != "" {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render("last event: " + m.lastEvent))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	if m.state == StateDone {
		b.WriteString(helpStyle.Render("session over. press q to quit."))
	} else {
		b.WriteString(helpStyle.Render("p pause · r resume · e end · q quit"))
	}

	return b.String()
}

func renderField(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func stateBadge(s session.State) string {
	switch s {
	case session.StateActive:
		return badgeActive.Render("ACTIVE")
	case session.StatePaused:
		return badgePaused.Render("PAUSED")
	case session.StateCompleted:
		return badgeEnded.Render("COMPLETED")
	case session.StateAbandoned:
		return badgeEnded.Render("ABANDONED")
	case session.StateError:
		return badgeError.Render("ERROR")
	default:
		return valueStyle.Render(strings.ToUpper(string(s)))
	}
}

// formats the running timer, switching to HH:MM:SS past the hour
func elapsedLabel(s *session.Session) string {
	seconds := timeutil.ElapsedSeconds(s.StartTime)

	if seconds >= 3600 {
		return timeutil.FormatHHMMSS(seconds)
	}

	return timeutil.FormatMMSS(seconds)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg{event: <-events}
	}
}
