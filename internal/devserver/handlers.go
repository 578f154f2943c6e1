package devserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/algopatterns/client/internal/gateway"
)

// creates a handler that registers a new practice session
func StartSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var desc gateway.SessionDescriptor
		if err := c.ShouldBindJSON(&desc); err != nil {
			badRequest(c, err.Error())
			return
		}

		if desc.SessionType == "" {
			badRequest(c, "session_type is required")
			return
		}

		session := store.Start(&desc)
		c.JSON(http.StatusCreated, session)
	}
}

func PauseSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Pause(c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func ResumeSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Resume(c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func EndSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req endRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		session, err := store.End(c.Param("id"), req.Reason)
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func GetSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// returns the caller's active session, 404 when none exists
func ActiveSessionHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := store.Active()
		if session == nil {
			c.JSON(http.StatusNotFound, errorResponse{
				Error:   codeSessionNotFound,
				Message: "no active session",
			})
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func ListSessionsHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))         //nolint:errcheck
		includeActive, _ := strconv.ParseBool(c.DefaultQuery("include_active", "false")) //nolint:errcheck

		c.JSON(http.StatusOK, store.List(limit, includeActive))
	}
}

func AppendEventHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req appendEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := store.AppendEvent(c.Param("id"), req.EventType, req.Data, req.Timestamp); err != nil {
			storeError(c, err)
			return
		}

		c.Status(http.StatusAccepted)
	}
}

func PutCodeHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := store.SetCode(c.Param("id"), req.Code, req.Language); err != nil {
			storeError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func GetCodeHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := store.GetCode(c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, code)
	}
}

func RecoveryBundleHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, code, err := store.Recovery(c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session":      session,
			"current_code": code,
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error:   codeBadRequest,
		Message: message,
	})
}

// maps store errors onto the backend's error vocabulary
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorResponse{
			Error:   codeSessionNotFound,
			Message: "session not found",
		})

	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   codeInvalidOperation,
			Message: "invalid session transition",
		})

	default:
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "server_error",
			Message: "an error occurred",
		})
	}
}
