package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned before any request is made when no API key is configured
var ErrMissingAPIKey = errors.New("capture API key not configured - set api.apikey or CAPTURE_API_KEY")

// APIError is a non-2xx answer from the capture API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" || e.Message == e.Status {
		return fmt.Sprintf("capture API error: %s", e.Status)
	}
	return fmt.Sprintf("capture API error (%d): %s", e.StatusCode, e.Message)
}

// extractErrorMessage pulls a human readable message out of an error body.
// It understands {"error":"..."}, {"message":"..."}, {"error":{"message":"..."}}
// and {"detail":"..."}; anything else falls back to the HTTP status line.
func extractErrorMessage(body []byte, status string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := messageFrom(payload); msg != "" {
			return msg
		}
	}
	if status == "" {
		return "unknown error"
	}
	return status
}

func messageFrom(payload map[string]any) string {
	for _, key := range []string{"error", "message", "detail"} {
		switch v := payload[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if msg := messageFrom(v); msg != "" {
				return msg
			}
		}
	}
	return ""
}
