package gateway

import (
	"encoding/json"
	"time"

	"codeberg.org/algopatterns/client/internal/timeutil"
)

// session record as the remote authority reports it. The canonical remote
// schema is snake_case, but older backend builds emitted camelCase; decoding
// merges both naming styles instead of validating one.
type RemoteSession struct {
	ID            string
	SessionType   string
	State         string
	QuestionID    string
	QuestionTitle string
	RoadmapID     string
	Difficulty    string
	Language      string
	StartTime     time.Time
	LastActivity  time.Time
	EndTime       time.Time
	Analytics     RemoteAnalytics
}

type RemoteAnalytics struct {
	CodeChanges   int  `json:"code_changes"`
	TestsRun      int  `json:"tests_run"`
	HintsUsed     int  `json:"hints_used"`
	AttemptsCount int  `json:"attempts_count"`
	IsCompleted   bool `json:"is_completed"`
}

// descriptor sent when registering a locally created session
type SessionDescriptor struct {
	SessionID     string    `json:"session_id"`
	SessionType   string    `json:"session_type"`
	QuestionID    string    `json:"question_id,omitempty"`
	QuestionTitle string    `json:"question_title,omitempty"`
	RoadmapID     string    `json:"roadmap_id,omitempty"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Language      string    `json:"language,omitempty"`
	StartTime     time.Time `json:"start_time"`
}

// latest editor contents stored remotely for a session
type CurrentCode struct {
	Code      string
	Language  string
	Timestamp time.Time
}

// everything needed to rebuild a session after a reload
type RecoveryBundle struct {
	Session     *RemoteSession `json:"session"`
	CurrentCode *CurrentCode   `json:"current_code"`
}

type eventRequest struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type reasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

type codeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// raw field set shared by the tolerant decoders
type rawFields map[string]json.RawMessage

// returns the first raw value present under any of the given keys
func (r rawFields) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && string(v) != "null" {
			return v, true
		}
	}

	return nil, false
}

func (r rawFields) str(keys ...string) string {
	raw, ok := r.pick(keys...)
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// decodes an instant that may be an RFC3339 string or an epoch in millis
func (r rawFields) instant(keys ...string) time.Time {
	raw, ok := r.pick(keys...)
	if !ok {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return timeutil.ParseInstant(s)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return timeutil.ParseInstant(n)
	}

	return time.Time{}
}

func (s *RemoteSession) UnmarshalJSON(data []byte) error {
	var raw rawFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = raw.str("id", "session_id", "sessionId")
	s.SessionType = raw.str("session_type", "sessionType", "type")
	s.State = raw.str("state", "status")
	s.QuestionID = raw.str("question_id", "questionId")
	s.QuestionTitle = raw.str("question_title", "questionTitle")
	s.RoadmapID = raw.str("roadmap_id", "roadmapId")
	s.Difficulty = raw.str("difficulty")
	s.Language = raw.str("language")
	s.StartTime = raw.instant("start_time", "startTime")
	s.LastActivity = raw.instant("last_activity", "lastActivity")
	s.EndTime = raw.instant("end_time", "endTime")

	if analyticsRaw, ok := raw.pick("analytics"); ok {
		if err := json.Unmarshal(analyticsRaw, &s.Analytics); err != nil {
			return err
		}
	}

	return nil
}

func (s RemoteSession) MarshalJSON() ([]byte, error) {
	// canonical remote naming on output
	out := map[string]any{
		"id":           s.ID,
		"session_type": s.SessionType,
		"state":        s.State,
		"analytics":    s.Analytics,
	}

	if s.QuestionID != "" {
		out["question_id"] = s.QuestionID
	}

	if s.QuestionTitle != "" {
		out["question_title"] = s.QuestionTitle
	}

	if s.RoadmapID != "" {
		out["roadmap_id"] = s.RoadmapID
	}

	if s.Difficulty != "" {
		out["difficulty"] = s.Difficulty
	}

	if s.Language != "" {
		out["language"] = s.Language
	}

	if !s.StartTime.IsZero() {
		out["start_time"] = s.StartTime.UTC().Format(time.RFC3339Nano)
	}

	if !s.LastActivity.IsZero() {
		out["last_activity"] = s.LastActivity.UTC().Format(time.RFC3339Nano)
	}

	if !s.EndTime.IsZero() {
		out["end_time"] = s.EndTime.UTC().Format(time.RFC3339Nano)
	}

	return json.Marshal(out)
}

func (a *RemoteAnalytics) UnmarshalJSON(data []byte) error {
	var raw rawFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	intField := func(keys ...string) int {
		rawVal, ok := raw.pick(keys...)
		if !ok {
			return 0
		}

		var n int
		if err := json.Unmarshal(rawVal, &n); err != nil {
			return 0
		}

		return n
	}

	a.CodeChanges = intField("code_changes", "codeChanges")
	a.TestsRun = intField("tests_run", "testsRun")
	a.HintsUsed = intField("hints_used", "hintsUsed")
	a.AttemptsCount = intField("attempts_count", "attemptsCount")

	if rawVal, ok := raw.pick("is_completed", "isCompleted"); ok {
		var b bool
		if err := json.Unmarshal(rawVal, &b); err == nil {
			a.IsCompleted = b
		}
	}

	return nil
}

func (c *CurrentCode) UnmarshalJSON(data []byte) error {
	var raw rawFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Code = raw.str("code")
	c.Language = raw.str("language")
	c.Timestamp = raw.instant("timestamp", "updated_at", "updatedAt")

	return nil
}

func (c CurrentCode) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"code":     c.Code,
		"language": c.Language,
	}

	if !c.Timestamp.IsZero() {
		out["timestamp"] = c.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	return json.Marshal(out)
}
