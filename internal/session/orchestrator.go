// Package session owns the client-side practice-session lifecycle: the
// single current-session slot, its state machine, recovery from the remote
// authority, and throttled synchronization of high-frequency writes.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"codeberg.org/algopatterns/client/internal/gateway"
	"codeberg.org/algopatterns/client/internal/logger"
	"codeberg.org/algopatterns/client/internal/throttle"
	"codeberg.org/algopatterns/client/internal/timeutil"
)

// end reasons with defined semantics
const (
	ReasonCompleted         = "completed"
	ReasonNewSessionStarted = "new_session_started"
	ReasonUserRequest       = "user_request"
	ReasonPageHidden        = "page_hidden"
)

const (
	// minimum interval between remote current-code writes
	defaultSyncWindow = 2 * time.Second

	// deadline for best-effort remote calls made off the caller's path
	remoteCallTimeout = 10 * time.Second
)

// operations the orchestrator needs from the remote authority.
// *gateway.Client satisfies this; tests substitute fakes.
type Gateway interface {
	StartSession(ctx context.Context, desc *gateway.SessionDescriptor) (*gateway.RemoteSession, error)
	PauseSession(ctx context.Context, sessionID, reason string) (*gateway.RemoteSession, error)
	ResumeSession(ctx context.Context, sessionID string) (*gateway.RemoteSession, error)
	EndSession(ctx context.Context, sessionID, reason string) (*gateway.RemoteSession, error)
	GetActiveSession(ctx context.Context) (*gateway.RemoteSession, error)
	AppendEvent(ctx context.Context, sessionID, eventType string, data map[string]any) error
	PutCurrentCode(ctx context.Context, sessionID, code, language string) error
	GetCurrentCode(ctx context.Context, sessionID string) (*gateway.CurrentCode, error)
}

// immutable descriptive context for a new session
type StartConfig struct {
	Type          Type
	QuestionID    string
	QuestionTitle string
	RoadmapID     string
	Difficulty    string
	Language      string
}

// state handed to the UI when resuming a recovered session
type RecoveryData struct {
	SessionID     string
	State         State
	QuestionID    string
	QuestionTitle string
	PausedSeconds int
	Code          string
	Language      string
}

type codePayload struct {
	sessionID string
	code      string
	language  string
}

// drives the practice-session state machine. Owns the process-wide
// current-session slot and the read-only history list; all mutation goes
// through lifecycle methods, and subscribers observe changes via events.
// Gateway calls always run with the mutex released: a slow backend delays
// only the lifecycle call awaiting it, never unrelated calls.
type Orchestrator struct {
	mu      sync.Mutex
	current *Session
	history []*Session

	gw  Gateway
	bus *bus
	now func() time.Time

	codeSync *throttle.Coalescer[codePayload]

	// caps best-effort telemetry forwarding so event bursts cannot
	// flood the backend
	telemetry *rate.Limiter
}

type Option func(*Orchestrator)

// overrides the clock (tests)
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// overrides the code-sync throttle window (tests)
func WithSyncWindow(window time.Duration) Option {
	return func(o *Orchestrator) {
		o.codeSync = throttle.NewCoalescer(window, o.syncCode)
	}
}

// creates an orchestrator bound to the given gateway
func NewOrchestrator(gw Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gw:        gw,
		bus:       newBus(),
		now:       timeutil.Now,
		telemetry: rate.NewLimiter(rate.Every(200*time.Millisecond), 10),
	}

	o.codeSync = throttle.NewCoalescer(defaultSyncWindow, o.syncCode)

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// registers a subscriber for lifecycle events and returns its handle
func (o *Orchestrator) Subscribe(fn func(Event)) int {
	return o.bus.subscribe(fn)
}

// removes a subscriber
func (o *Orchestrator) Unsubscribe(id int) {
	o.bus.unsubscribe(id)
}

// Startup recovery protocol. The client keeps no persisted local state:
// the remote authority is the sole source of truth across reloads. Queries
// it for an active session and adopts the result only when the reported
// state is recoverable; terminal or unrecognized states are discarded and
// the orchestrator starts clean. A gateway failure also starts clean -
// recovery must never block the client from coming up.
func (o *Orchestrator) Initialize(ctx context.Context) bool {
	remote, err := o.gw.GetActiveSession(ctx)
	if err != nil {
		logger.Warn("session recovery query failed, starting clean", "error", err)
		o.bus.publish(Event{Kind: EventInitialized, HasSession: false, At: o.now()})
		return false
	}

	if remote == nil {
		o.bus.publish(Event{Kind: EventInitialized, HasSession: false, At: o.now()})
		return false
	}

	state := State(remote.State)
	if state != StateActive && state != StatePaused {
		logger.Info("discarding remote session in non-recoverable state",
			"session_id", remote.ID,
			"state", remote.State,
		)
		o.bus.publish(Event{Kind: EventInitialized, HasSession: false, At: o.now()})
		return false
	}

	adopted := o.fromRemote(remote)

	o.mu.Lock()
	o.current = adopted
	o.mu.Unlock()

	logger.Info("recovered session from remote authority",
		"session_id", adopted.ID,
		"state", string(adopted.State),
	)

	o.bus.publish(Event{
		Kind:       EventInitialized,
		SessionID:  adopted.ID,
		State:      adopted.State,
		HasSession: true,
		At:         o.now(),
	})

	return true
}

// converts a remote record into local shape, flagged for recovery
func (o *Orchestrator) fromRemote(remote *gateway.RemoteSession) *Session {
	lastActivity := remote.LastActivity
	if lastActivity.IsZero() {
		lastActivity = remote.StartTime
	}

	return &Session{
		ID:            remote.ID,
		Type:          Type(remote.SessionType),
		State:         State(remote.State),
		StartTime:     remote.StartTime,
		LastActivity:  lastActivity,
		QuestionID:    remote.QuestionID,
		QuestionTitle: remote.QuestionTitle,
		RoadmapID:     remote.RoadmapID,
		Difficulty:    remote.Difficulty,
		Language:      remote.Language,
		Analytics: Analytics{
			CodeChanges:   remote.Analytics.CodeChanges,
			TestsRun:      remote.Analytics.TestsRun,
			HintsUsed:     remote.Analytics.HintsUsed,
			AttemptsCount: remote.Analytics.AttemptsCount,
		},
		RemoteSynced:  true,
		RemoteID:      remote.ID,
		NeedsRecovery: true,
	}
}

// starts a new session, ending any currently active one first so two
// sessions can never run at once. Remote registration is best-effort: when
// the backend is unreachable the session runs in local-only mode. This is
// the only lifecycle method whose failure propagates to the caller.
// The lock is released before every gateway call so a hung backend can
// never stall unrelated orchestrator calls.
func (o *Orchestrator) StartSession(ctx context.Context, cfg StartConfig) (string, error) {
	if !ValidType(cfg.Type) {
		err := fmt.Errorf("unknown session type %q", cfg.Type)
		o.bus.publish(Event{Kind: EventError, Err: err, At: o.now()})
		return "", err
	}

	o.mu.Lock()

	var pending []Event
	var priorEnd *remoteEnd
	if o.current != nil && !o.current.State.Terminal() {
		pending, priorEnd = o.endLocked(ReasonNewSessionStarted)
	}

	now := o.now()
	s := &Session{
		ID:            uuid.NewString(),
		Type:          cfg.Type,
		State:         StateActive,
		StartTime:     now,
		LastActivity:  now,
		QuestionID:    cfg.QuestionID,
		QuestionTitle: cfg.QuestionTitle,
		RoadmapID:     cfg.RoadmapID,
		Difficulty:    cfg.Difficulty,
		Language:      cfg.Language,
	}

	desc := &gateway.SessionDescriptor{
		SessionID:     s.ID,
		SessionType:   string(s.Type),
		QuestionID:    s.QuestionID,
		QuestionTitle: s.QuestionTitle,
		RoadmapID:     s.RoadmapID,
		Difficulty:    s.Difficulty,
		Language:      s.Language,
		StartTime:     s.StartTime,
	}

	o.current = s
	sessionID := s.ID
	o.mu.Unlock()

	o.finishRemoteEnd(ctx, priorEnd)

	remote, err := o.gw.StartSession(ctx, desc)
	if err != nil {
		// remote unavailability is never fatal to starting a session
		logger.Warn("remote session registration failed, continuing local-only",
			"session_id", sessionID,
			"error", err,
		)
	}

	o.mu.Lock()
	// the slot may have moved on while the registration was in flight
	if err == nil && o.current != nil && o.current.ID == sessionID {
		o.current.RemoteSynced = true
		o.current.RemoteID = remote.ID
	}
	o.mu.Unlock()

	for _, event := range pending {
		o.bus.publish(event)
	}

	o.bus.publish(Event{
		Kind:      EventStarted,
		SessionID: sessionID,
		State:     StateActive,
		At:        now,
	})

	return sessionID, nil
}

// pauses the current session. Returns false when there is no session or it
// is in a terminal state; pausing an already-paused session is a logged
// no-op success with no duplicate event.
func (o *Orchestrator) PauseSession(ctx context.Context, reason string) bool {
	o.mu.Lock()

	if o.current == nil {
		o.mu.Unlock()
		logger.Debug("pause requested with no current session")
		return false
	}

	if o.current.State == StatePaused {
		o.mu.Unlock()
		logger.Debug("pause requested but session already paused")
		return true
	}

	if !canTransition(o.current.State, StatePaused) {
		state := o.current.State
		o.mu.Unlock()
		logger.Debug("illegal pause transition", "from", string(state))
		return false
	}

	now := o.now()
	o.current.State = StatePaused
	o.current.touch(now)
	sessionID := o.current.ID
	synced := o.current.RemoteSynced
	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	if synced {
		o.notifyRemote(ctx, "pause", sessionID, remoteID, reason)
	}

	o.bus.publish(Event{
		Kind:      EventPaused,
		SessionID: sessionID,
		State:     StatePaused,
		Reason:    reason,
		At:        now,
	})

	return true
}

// resumes a paused session and clears its recovery flag. Resuming an
// already-active session is a no-op success.
func (o *Orchestrator) ResumeSession(ctx context.Context) bool {
	o.mu.Lock()

	if o.current == nil {
		o.mu.Unlock()
		logger.Debug("resume requested with no current session")
		return false
	}

	if o.current.State == StateActive {
		o.mu.Unlock()
		logger.Debug("resume requested but session already active")
		return true
	}

	if !canTransition(o.current.State, StateActive) {
		state := o.current.State
		o.mu.Unlock()
		logger.Debug("illegal resume transition", "from", string(state))
		return false
	}

	now := o.now()
	o.current.State = StateActive
	o.current.NeedsRecovery = false
	o.current.touch(now)
	sessionID := o.current.ID
	synced := o.current.RemoteSynced
	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	if synced {
		o.notifyRemote(ctx, "resume", sessionID, remoteID, "")
	}

	o.bus.publish(Event{
		Kind:      EventResumed,
		SessionID: sessionID,
		State:     StateActive,
		At:        now,
	})

	return true
}

// ends the current session. Returns false when there is nothing to end.
// The final state is completed only for reason "completed"; everything
// else abandons the session.
func (o *Orchestrator) EndSession(ctx context.Context, reason string) bool {
	o.mu.Lock()

	if o.current == nil || o.current.State.Terminal() {
		o.mu.Unlock()
		return false
	}

	pending, remote := o.endLocked(reason)
	o.mu.Unlock()

	o.finishRemoteEnd(ctx, remote)

	for _, event := range pending {
		o.bus.publish(event)
	}

	return true
}

// deferred best-effort remote end, carried out of endLocked so the gateway
// call happens with the lock released
type remoteEnd struct {
	sessionID string
	remoteID  string
	reason    string
}

// ends the current session while holding the lock. Local cleanup is
// unconditional and immediate; the remote end is returned as a descriptor
// for the caller to fire after releasing the lock, together with the events
// to publish. A hung backend therefore never stalls the orchestrator.
func (o *Orchestrator) endLocked(reason string) ([]Event, *remoteEnd) {
	s := o.current

	// push out any code still sitting in the throttle window so the last
	// editor state survives the session
	o.codeSync.Flush()

	var remote *remoteEnd
	if s.RemoteSynced {
		remote = &remoteEnd{
			sessionID: s.ID,
			remoteID:  o.remoteIDLocked(),
			reason:    reason,
		}
	}

	now := o.now()

	finalState := StateAbandoned
	kind := EventAbandoned

	if reason == ReasonCompleted {
		finalState = StateCompleted
		kind = EventCompleted
		s.Analytics.IsCompleted = true
	}

	s.State = finalState
	s.EndTime = now
	s.touch(now)

	o.history = append(o.history, s)
	o.current = nil

	events := []Event{
		{
			Kind:      kind,
			SessionID: s.ID,
			State:     finalState,
			Reason:    reason,
			At:        now,
		},
		{
			Kind:      EventStateSyncRequest,
			SessionID: s.ID,
			At:        now,
		},
	}

	return events, remote
}

// performs a deferred remote end; failures are logged, local cleanup has
// already happened
func (o *Orchestrator) finishRemoteEnd(ctx context.Context, end *remoteEnd) {
	if end == nil {
		return
	}

	if _, err := o.gw.EndSession(ctx, end.remoteID, end.reason); err != nil {
		logger.Warn("remote session end failed, cleaned up locally anyway",
			"session_id", end.sessionID,
			"error", err,
		)
	}
}

// best-effort remote pause/resume notification, made after the local
// transition with the lock released; failures degrade to local-only
// operation and never block the local transition
func (o *Orchestrator) notifyRemote(ctx context.Context, op, sessionID, remoteID, reason string) {
	var err error

	switch op {
	case "pause":
		_, err = o.gw.PauseSession(ctx, remoteID, reason)
	case "resume":
		_, err = o.gw.ResumeSession(ctx, remoteID)
	}

	if err != nil {
		logger.Warn("remote session notify failed, continuing local-only",
			"op", op,
			"session_id", sessionID,
			"error", err,
		)
	}
}

func (o *Orchestrator) remoteIDLocked() string {
	if o.current.RemoteID != "" {
		return o.current.RemoteID
	}

	return o.current.ID
}

// records a telemetry event against the current session. The local append
// always happens; forwarding to the remote authority is asynchronous,
// rate-capped and never awaited by the caller.
func (o *Orchestrator) RecordEvent(eventType string, data map[string]any) {
	o.mu.Lock()

	if o.current == nil {
		o.mu.Unlock()
		return
	}

	now := o.now()
	o.current.appendEvent(eventType, data, now)
	bumpAnalytics(&o.current.Analytics, eventType)

	synced := o.current.RemoteSynced
	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	if !synced {
		return
	}

	go func() {
		if !o.telemetry.Allow() {
			logger.Debug("telemetry event dropped by rate cap", "type", eventType)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()

		if err := o.gw.AppendEvent(ctx, remoteID, eventType, data); err != nil {
			logger.Debug("telemetry event forward failed", "type", eventType, "error", err)
		}
	}()
}

// maps event types onto the monotonic analytics counters
func bumpAnalytics(a *Analytics, eventType string) {
	switch eventType {
	case "code_change":
		a.CodeChanges++
	case "test_run", "tests_run":
		a.TestsRun++
	case "hint_used":
		a.HintsUsed++
	case "submission", "attempt":
		a.AttemptsCount++
	}
}

// captures the current editor state locally and schedules a throttled
// remote sync. Called on every keystroke-driven change; at most one remote
// write goes out per throttle window, always carrying the latest code.
func (o *Orchestrator) UpdateCodeSnapshot(code, language string) {
	o.mu.Lock()

	if o.current == nil {
		o.mu.Unlock()
		return
	}

	o.current.pushSnapshot(code, language, o.now())
	o.current.Analytics.CodeChanges++

	synced := o.current.RemoteSynced
	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	if !synced {
		return
	}

	o.codeSync.Submit(codePayload{
		sessionID: remoteID,
		code:      code,
		language:  language,
	})
}

// flush target for the code-sync coalescer; fire-and-forget
func (o *Orchestrator) syncCode(p codePayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()

		if err := o.gw.PutCurrentCode(ctx, p.sessionID, p.code, p.language); err != nil {
			logger.Debug("code sync failed, continuing local-only",
				"session_id", p.sessionID,
				"error", err,
			)
		}
	}()
}

// reports whether the current session was reconstructed from the remote
// authority and still awaits an explicit resume
func (o *Orchestrator) NeedsRecovery() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.current != nil && !o.current.State.Terminal() && o.current.NeedsRecovery
}

// assembles what the UI needs to offer a resume: how long the session has
// been idle and the most recent code, preferring the freshly fetched remote
// copy over the local snapshot ring
func (o *Orchestrator) GetRecoveryData(ctx context.Context) *RecoveryData {
	o.mu.Lock()

	if o.current == nil || o.current.State.Terminal() || !o.current.NeedsRecovery {
		o.mu.Unlock()
		return nil
	}

	data := &RecoveryData{
		SessionID:     o.current.ID,
		State:         o.current.State,
		QuestionID:    o.current.QuestionID,
		QuestionTitle: o.current.QuestionTitle,
		PausedSeconds: timeutil.ElapsedSecondsAt(o.current.LastActivity, o.now()),
		Language:      o.current.Language,
	}

	if snap := o.current.latestSnapshot(); snap != nil {
		data.Code = snap.Code
		data.Language = snap.Language
	}

	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	if remote, err := o.gw.GetCurrentCode(ctx, remoteID); err == nil && remote != nil && remote.Code != "" {
		data.Code = remote.Code

		if remote.Language != "" {
			data.Language = remote.Language
		}
	} else if err != nil {
		logger.Debug("remote code fetch failed during recovery, using local snapshot",
			"session_id", data.SessionID,
			"error", err,
		)
	}

	return data
}

// unconditional hard reset of session and history, used when navigating
// away from session-critical contexts
func (o *Orchestrator) ForceResetState() {
	o.mu.Lock()
	o.current = nil
	o.history = nil
	o.mu.Unlock()

	o.codeSync.Reset()

	o.bus.publish(Event{Kind: EventInitialized, HasSession: false, At: o.now()})
}

// best-effort pause notification for page-unload/hide handlers. Remote
// only and fire-and-forget; there is no guarantee it completes before the
// page is torn down.
func (o *Orchestrator) NotifyPageHidden() {
	o.mu.Lock()

	if o.current == nil || o.current.State != StateActive || !o.current.RemoteSynced {
		o.mu.Unlock()
		return
	}

	remoteID := o.remoteIDLocked()
	o.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()

		if _, err := o.gw.PauseSession(ctx, remoteID, ReasonPageHidden); err != nil {
			logger.Debug("page-hidden pause notify failed", "error", err)
		}
	}()
}

// returns a copy of the current session, or nil when idle
func (o *Orchestrator) GetCurrentSession() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.current.clone()
}

// returns copies of ended sessions, most recent first
func (o *Orchestrator) GetSessionHistory(limit int) []*Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.history)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*Session, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, o.history[i].clone())
	}

	return out
}

// flushes pending writes and releases the throttle; call on shutdown
func (o *Orchestrator) Close() {
	o.codeSync.Flush()
	o.codeSync.Stop()
}
