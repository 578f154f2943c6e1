package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/client/internal/gateway"
	"codeberg.org/algopatterns/client/internal/session"
)

// minimal gateway double recording pause reasons
type stubGateway struct {
	mu           sync.Mutex
	pauseReasons []string
	ended        []string
}

func (s *stubGateway) StartSession(_ context.Context, desc *gateway.SessionDescriptor) (*gateway.RemoteSession, error) {
	return &gateway.RemoteSession{ID: "remote-" + desc.SessionID, State: "active"}, nil
}

func (s *stubGateway) PauseSession(_ context.Context, sessionID, reason string) (*gateway.RemoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pauseReasons = append(s.pauseReasons, reason)
	return &gateway.RemoteSession{ID: sessionID, State: "paused"}, nil
}

func (s *stubGateway) ResumeSession(_ context.Context, sessionID string) (*gateway.RemoteSession, error) {
	return &gateway.RemoteSession{ID: sessionID, State: "active"}, nil
}

func (s *stubGateway) EndSession(_ context.Context, sessionID, _ string) (*gateway.RemoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ended = append(s.ended, sessionID)
	return &gateway.RemoteSession{ID: sessionID, State: "completed"}, nil
}

func (s *stubGateway) GetActiveSession(_ context.Context) (*gateway.RemoteSession, error) {
	return nil, nil
}

func (s *stubGateway) AppendEvent(_ context.Context, _, _ string, _ map[string]any) error {
	return nil
}

func (s *stubGateway) PutCurrentCode(_ context.Context, _, _, _ string) error {
	return nil
}

func (s *stubGateway) GetCurrentCode(_ context.Context, _ string) (*gateway.CurrentCode, error) {
	return nil, gateway.ErrSessionNotFound
}

func (s *stubGateway) recordedPauseReasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pauseReasons...)
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestQuitKeySendsBestEffortRemotePause(t *testing.T) {
	gw := &stubGateway{}
	orch := session.NewOrchestrator(gw)
	defer orch.Close()

	_, err := orch.StartSession(context.Background(), session.StartConfig{Type: session.TypePractice})
	require.NoError(t, err)

	m := NewApp(orch)
	_, cmd := m.Update(keyMsg('q'))
	assert.NotNil(t, cmd)

	// the teardown pause is fire-and-forget, so wait for it to land
	assert.Eventually(t, func() bool {
		reasons := gw.recordedPauseReasons()
		return len(reasons) == 1 && reasons[0] == session.ReasonPageHidden
	}, time.Second, 5*time.Millisecond)

	// quitting the view is not an end: the session survives
	current := orch.GetCurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, session.StateActive, current.State)
}

func TestEndKeyEndsSessionWithoutExtraPause(t *testing.T) {
	gw := &stubGateway{}
	orch := session.NewOrchestrator(gw)
	defer orch.Close()

	_, err := orch.StartSession(context.Background(), session.StartConfig{Type: session.TypePractice})
	require.NoError(t, err)

	m := NewApp(orch)
	_, cmd := m.Update(keyMsg('e'))
	assert.NotNil(t, cmd)

	assert.Nil(t, orch.GetCurrentSession())

	gw.mu.Lock()
	ended := len(gw.ended)
	gw.mu.Unlock()
	assert.Equal(t, 1, ended)

	// the session was already over when the view shut down, so no
	// teardown pause goes out
	assert.Never(t, func() bool {
		return len(gw.recordedPauseReasons()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}
