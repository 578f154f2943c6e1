package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/client/internal/auth"
	"codeberg.org/algopatterns/client/internal/config"
	"codeberg.org/algopatterns/client/internal/gateway"
)

// spins up the dev server and a real gateway client against it
func newTestClient(t *testing.T) *gateway.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(NewRouter(NewStore()))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIEndpoint:    server.URL,
		RequestTimeout: 5 * time.Second,
	}

	return gateway.NewClient(cfg, auth.NewStaticTokenSource(""))
}

func TestRoundTripLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	started, err := client.StartSession(ctx, &gateway.SessionDescriptor{
		SessionType:   "practice",
		QuestionID:    "two-sum",
		QuestionTitle: "Two Sum",
		Language:      "python",
	})
	require.NoError(t, err)
	require.NotEmpty(t, started.ID)
	assert.Equal(t, "active", started.State)
	assert.Equal(t, "Two Sum", started.QuestionTitle)
	assert.False(t, started.StartTime.IsZero())

	paused, err := client.PauseSession(ctx, started.ID, "user_request")
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.State)

	resumed, err := client.ResumeSession(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resumed.State)

	ended, err := client.EndSession(ctx, started.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", ended.State)
	assert.True(t, ended.Analytics.IsCompleted)
	assert.False(t, ended.EndTime.IsZero())
}

func TestRoundTripActiveSession(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	active, err := client.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	started, err := client.StartSession(ctx, &gateway.SessionDescriptor{SessionType: "practice"})
	require.NoError(t, err)

	active, err = client.GetActiveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, started.ID, active.ID)

	_, err = client.EndSession(ctx, started.ID, "user_request")
	require.NoError(t, err)

	active, err = client.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRoundTripEventsAndAnalytics(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	started, err := client.StartSession(ctx, &gateway.SessionDescriptor{SessionType: "practice"})
	require.NoError(t, err)

	require.NoError(t, client.AppendEvent(ctx, started.ID, "test_run", nil))
	require.NoError(t, client.AppendEvent(ctx, started.ID, "hint_used", map[string]any{"hint": 1}))
	require.NoError(t, client.AppendEvent(ctx, started.ID, "submission", nil))

	got, err := client.GetSession(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Analytics.TestsRun)
	assert.Equal(t, 1, got.Analytics.HintsUsed)
	assert.Equal(t, 1, got.Analytics.AttemptsCount)
}

func TestRoundTripCodeAndRecovery(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	started, err := client.StartSession(ctx, &gateway.SessionDescriptor{
		SessionType: "practice",
		Language:    "go",
	})
	require.NoError(t, err)

	_, err = client.GetCurrentCode(ctx, started.ID)
	assert.ErrorIs(t, err, gateway.ErrSessionNotFound)

	require.NoError(t, client.PutCurrentCode(ctx, started.ID, "func main() {}", "go"))

	code, err := client.GetCurrentCode(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "func main() {}", code.Code)
	assert.Equal(t, "go", code.Language)
	assert.False(t, code.Timestamp.IsZero())

	bundle, err := client.GetRecoveryBundle(ctx, started.ID)
	require.NoError(t, err)
	require.NotNil(t, bundle.Session)
	require.NotNil(t, bundle.CurrentCode)
	assert.Equal(t, started.ID, bundle.Session.ID)
	assert.Equal(t, "func main() {}", bundle.CurrentCode.Code)
}

func TestRoundTripErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, gateway.ErrSessionNotFound)

	// ending a finished session surfaces the backend's rejection
	started, err := client.StartSession(ctx, &gateway.SessionDescriptor{SessionType: "practice"})
	require.NoError(t, err)

	_, err = client.EndSession(ctx, started.ID, "completed")
	require.NoError(t, err)

	_, err = client.EndSession(ctx, started.ID, "completed")
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestRoundTripListSessions(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.StartSession(ctx, &gateway.SessionDescriptor{SessionType: "practice"})
	require.NoError(t, err)
	_, err = client.EndSession(ctx, first.ID, "completed")
	require.NoError(t, err)

	second, err := client.StartSession(ctx, &gateway.SessionDescriptor{SessionType: "daily_challenge"})
	require.NoError(t, err)

	list, err := client.ListSessions(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	list, err = client.ListSessions(ctx, 10, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}
