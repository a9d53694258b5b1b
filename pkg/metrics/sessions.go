package metrics

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// RecordSessionStart records a newly registered MCP client session
func RecordSessionStart() {
	m := Get()
	if m != nil {
		m.SessionsTotal.Inc()
		m.ActiveSessions.Inc()
	}
}

// RecordSessionEnd records an MCP client session going away
func RecordSessionEnd() {
	m := Get()
	if m != nil {
		m.ActiveSessions.Dec()
	}
}

// SessionHooks returns mcp-go hooks that keep the session gauges current
func SessionHooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		RecordSessionStart()
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		RecordSessionEnd()
	})
	return hooks
}
