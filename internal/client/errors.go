package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/session"
)

// APIError is a non-2xx reply from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Issues     []contract.Issue
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// FieldErrors maps structured issues back onto record field paths.
func (e *APIError) FieldErrors() records.FieldErrors {
	return contract.FieldErrorsFromIssues(e.Issues)
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Code   string          `json:"code"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		var msg string
		if err := json.Unmarshal(body.Detail, &msg); err == nil {
			apiErr.Message = msg
		} else {
			var issues []contract.Issue
			if err := json.Unmarshal(body.Detail, &issues); err == nil && len(issues) > 0 {
				apiErr.Issues = issues
				first := issues[0]
				if p := first.Path(); p != "" {
					apiErr.Message = p + ": " + first.Msg
				} else {
					apiErr.Message = first.Msg
				}
			}
		}
	}
	if strings.TrimSpace(apiErr.Message) == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// UserMessage reduces any error from this package to the single line shown
// to the teacher.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe records.FieldErrors
	var apiErr *APIError
	switch {
	case errors.As(err, &fe):
		return "Please fix the highlighted fields before submitting."
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, session.ErrNoToken):
		return "Please sign in first."
	case errors.Is(err, ErrUnreachable):
		return "Could not reach backend. Is the API running?"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	default:
		return err.Error()
	}
}
