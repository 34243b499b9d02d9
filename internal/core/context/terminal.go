package context

import "context"

type terminalKey struct{}

// WithTerminal attaches the calling terminal's identifier to ctx.
// Set by the sync API when a POS terminal pushes or pulls.
func WithTerminal(ctx context.Context, terminalID string) context.Context {
	return context.WithValue(ctx, terminalKey{}, terminalID)
}

// GetTerminalID returns the terminal identifier from ctx, or "" when the
// request did not originate from a terminal.
func GetTerminalID(ctx context.Context) string {
	if v, ok := ctx.Value(terminalKey{}).(string); ok {
		return v
	}
	return ""
}
