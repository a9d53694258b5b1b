package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrMissingSource is returned when none of url, html or markdown is given
var ErrMissingSource = errors.New("one of url, html or markdown is required")

// Source is the page to render. Exactly one field is normally set.
type Source struct {
	URL      string `json:"url,omitempty"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// Describe returns a short label for logs and result text
func (s Source) Describe() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.HTML != "":
		return fmt.Sprintf("inline HTML (%d chars)", len(s.HTML))
	case s.Markdown != "":
		return fmt.Sprintf("inline Markdown (%d chars)", len(s.Markdown))
	}
	return ""
}

// SourceFrom reads url/html/markdown from the request
func SourceFrom(request mcp.CallToolRequest) (Source, error) {
	src := Source{
		URL:      strings.TrimSpace(request.GetString("url", "")),
		HTML:     request.GetString("html", ""),
		Markdown: request.GetString("markdown", ""),
	}
	if src.URL == "" && strings.TrimSpace(src.HTML) == "" && strings.TrimSpace(src.Markdown) == "" {
		return Source{}, ErrMissingSource
	}
	if src.URL != "" {
		if err := ValidateURL(src.URL); err != nil {
			return Source{}, err
		}
	}
	return src, nil
}

// RequireURL reads a mandatory http(s) url argument
func RequireURL(request mcp.CallToolRequest) (string, error) {
	url := strings.TrimSpace(request.GetString("url", ""))
	if url == "" {
		return "", fmt.Errorf("url is required")
	}
	if err := ValidateURL(url); err != nil {
		return "", err
	}
	return url, nil
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(url string) error {
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("invalid url %q: must start with http:// or https://", url)
	}
	return nil
}

// Enum lowercases value and checks it against allowed; empty values pass
// through so the backend default applies.
func Enum(name, value string, allowed ...string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, a := range allowed {
		if value == strings.ToLower(a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: must be one of %s", name, value, strings.Join(allowed, ", "))
}

// IntRange reads an optional integer argument; zero means unset
func IntRange(request mcp.CallToolRequest, name string, min, max int) (int, error) {
	v := request.GetInt(name, 0)
	if v == 0 {
		return 0, nil
	}
	if v < min || v > max {
		return 0, fmt.Errorf("invalid %s %d: must be between %d and %d", name, v, min, max)
	}
	return v, nil
}

// FloatRange reads an optional float argument; zero means unset
func FloatRange(request mcp.CallToolRequest, name string, min, max float64) (float64, error) {
	v := request.GetFloat(name, 0)
	if v == 0 {
		return 0, nil
	}
	if v < min || v > max {
		return 0, fmt.Errorf("invalid %s %g: must be between %g and %g", name, v, min, max)
	}
	return v, nil
}

// DecodeArgument decodes an object/array argument into out. The argument may
// also arrive as a JSON encoded string.
func DecodeArgument(request mcp.CallToolRequest, name string, out any) (bool, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return false, nil
	}

	var data []byte
	if s, isString := raw.(string); isString {
		if strings.TrimSpace(s) == "" {
			return false, nil
		}
		data = []byte(s)
	} else {
		var err error
		data, err = json.Marshal(raw)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return true, nil
}

// Failure turns an error into an MCP error result the assistant can read
func Failure(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
