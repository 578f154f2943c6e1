package devserver

import "time"

type endRequest struct {
	Reason string `json:"reason"`
}

type appendEventRequest struct {
	EventType string         `json:"event_type" binding:"required"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type putCodeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// standardized error body, matching the production backend
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// stable error codes
const (
	codeBadRequest       = "bad_request"
	codeSessionNotFound  = "session_not_found"
	codeInvalidOperation = "invalid_operation"
)
