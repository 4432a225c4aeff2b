package pipeline

import (
	"context"
	"log/slog"
	"strings"
)

// Level classifies a user-facing message.
type Level int

const (
	LevelInfo Level = iota
	LevelHeader
	LevelProgress
	LevelSuccess
	LevelFailure
)

func (l Level) String() string {
	switch l {
	case LevelHeader:
		return "header"
	case LevelProgress:
		return "progress"
	case LevelSuccess:
		return "success"
	case LevelFailure:
		return "failure"
	default:
		return "info"
	}
}

// Event is one message for the user.
type Event struct {
	Level   Level
	Message string
}

// Sink receives user-facing messages. Presentation (colours, layout) is the
// sink's business.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Prompter asks the user for input.
type Prompter interface {
	ThemeName(ctx context.Context) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// NewLogSink returns a sink writing events to logger.
func NewLogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(e Event) {
		level := slog.LevelInfo
		if e.Level == LevelFailure {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, e.Message, slog.String("kind", e.Level.String()))
	})
}

// ParseConfirmation reports whether answer is an affirmative yes or y.
func ParseConfirmation(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

var discardSink = SinkFunc(func(Event) {})
