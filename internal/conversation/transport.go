package conversation

import "context"

// Button is one selectable option rendered by the chat transport. Data is
// echoed back verbatim through HandleSelection when pressed.
type Button struct {
	Label string
	Data  string
}

// Transport is the narrow surface the engine needs from the chat layer.
// Implementations deliver incoming events to the engine's Handle* methods
// and render outgoing messages through these two calls.
type Transport interface {
	SendMessage(ctx context.Context, submitterID int64, text string) error
	SendKeyboard(ctx context.Context, submitterID int64, text string, rows [][]Button) error
}
