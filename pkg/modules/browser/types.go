package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Backend endpoints
const (
	EndpointAutomate = "/v1/automate"
	EndpointInspect  = "/v1/inspect"
)

// Action types understood by the automation backend
const (
	ActionClick           = "click"
	ActionType            = "type"
	ActionFill            = "fill"
	ActionSelect          = "select"
	ActionHover           = "hover"
	ActionScroll          = "scroll"
	ActionWait            = "wait"
	ActionWaitForSelector = "wait_for_selector"
	ActionPress           = "press"
	ActionNavigate        = "navigate"
	ActionScreenshot      = "screenshot"
	ActionExtract         = "extract"
	ActionEvaluate        = "evaluate"
)

// ActionTypes lists every supported action type in display order
var ActionTypes = []string{
	ActionClick, ActionType, ActionFill, ActionSelect, ActionHover, ActionScroll,
	ActionWait, ActionWaitForSelector, ActionPress, ActionNavigate,
	ActionScreenshot, ActionExtract, ActionEvaluate,
}

var (
	needsSelector = map[string]bool{
		ActionClick:           true,
		ActionType:            true,
		ActionFill:            true,
		ActionSelect:          true,
		ActionHover:           true,
		ActionWaitForSelector: true,
		ActionExtract:         true,
	}
	needsValue = map[string]bool{
		ActionType:     true,
		ActionFill:     true,
		ActionSelect:   true,
		ActionPress:    true,
		ActionNavigate: true,
		ActionEvaluate: true,
	}
)

// Action is a single browser step
type Action struct {
	Type     string      `json:"type"`
	Selector string      `json:"selector,omitempty"`
	Value    ActionValue `json:"value,omitempty"`
	Timeout  int         `json:"timeout,omitempty"`
}

// ActionValue is the action argument. Numbers and booleans are accepted and
// kept as their JSON text, so {"value": 500} becomes "500".
type ActionValue string

// UnmarshalJSON accepts a string or any other scalar
func (v *ActionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ActionValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("action value must be a string, number or boolean")
	default:
		*v = ActionValue(data)
	}
	return nil
}

// SequenceRequest is the body of POST /v1/automate
type SequenceRequest struct {
	URL        string   `json:"url"`
	Actions    []Action `json:"actions"`
	Screenshot bool     `json:"screenshot,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
}

// StepResult reports the outcome of one action
type StepResult struct {
	Index    *int        `json:"index,omitempty"`
	Action   string      `json:"action"`
	Selector string      `json:"selector,omitempty"`
	Success  bool        `json:"success"`
	Error    string      `json:"error,omitempty"`
	Took     json.Number `json:"took,omitempty"`
}

// SequenceResult is the answer of POST /v1/automate
type SequenceResult struct {
	Success    bool           `json:"success"`
	Took       json.Number    `json:"took,omitempty"`
	FinalURL   string         `json:"finalUrl,omitempty"`
	Steps      []StepResult   `json:"steps"`
	Screenshot string         `json:"screenshot,omitempty"`
	Extracted  map[string]any `json:"extracted,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// InspectRequest is the body of POST /v1/inspect. Unset flags keep the
// backend defaults.
type InspectRequest struct {
	URL             string `json:"url"`
	IncludeLinks    *bool  `json:"includeLinks,omitempty"`
	IncludeMeta     *bool  `json:"includeMeta,omitempty"`
	IncludeHeadings *bool  `json:"includeHeadings,omitempty"`
	WaitForSelector string `json:"waitForSelector,omitempty"`
}
