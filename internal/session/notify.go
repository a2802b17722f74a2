package session

import (
	"context"

	"github.com/charmbracelet/log"
)

// Level classifies a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives fire-and-forget user notifications.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(level Level, message string) {
	l := n.Logger
	if l == nil {
		l = log.Default()
	}
	switch level {
	case LevelWarning:
		l.Warn(message, "kind", level)
	case LevelError:
		l.Error(message, "kind", level)
	default:
		l.Info(message, "kind", level)
	}
}

// Prompt is the question shown before an irreversible action.
type Prompt struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, p Prompt) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) bool { return f(ctx, p) }

type confirmationKey struct{}

// WithConfirmation attaches an answer given ahead of time, e.g. by a request
// parameter, for ContextConfirmer to return.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmationKey{}, confirmed)
}

// ContextConfirmer answers with the value attached by WithConfirmation and
// declines when there is none.
type ContextConfirmer struct{}

// Confirm implements Confirmer.
func (ContextConfirmer) Confirm(ctx context.Context, _ Prompt) bool {
	ok, _ := ctx.Value(confirmationKey{}).(bool)
	return ok
}
