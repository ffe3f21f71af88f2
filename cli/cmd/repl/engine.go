package repl

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/bcalc/lang"
	"github.com/ardnew/bcalc/log"
)

// outcome is the result of submitting one line of input.
type outcome struct {
	value   float64
	err     error
	source  string // complete input that was evaluated
	pending bool   // input so far is an incomplete construct
	blank   bool   // nothing to evaluate
}

// engine accumulates input lines until they form complete constructs and
// evaluates them in a session. Both front ends share it.
type engine struct {
	session *lang.Session
	logger  log.Logger
	pending strings.Builder
}

func newEngine(s *lang.Session, logger log.Logger) *engine {
	return &engine{session: s, logger: logger}
}

// submit appends line to any pending input and evaluates it once it no longer
// ends inside a construct. Errors other than incomplete input discard the
// pending input.
func (e *engine) submit(ctx context.Context, line string) outcome {
	if e.pending.Len() > 0 {
		e.pending.WriteByte('\n')
	}

	e.pending.WriteString(line)

	src := e.pending.String()

	v, err := e.session.Exec(ctx, src)

	switch {
	case err == nil:
		e.pending.Reset()

		return outcome{value: v, source: src}

	case lang.IsIncomplete(err) && isBlank(ctx, src):
		e.pending.Reset()

		return outcome{blank: true}

	case lang.IsIncomplete(err):
		e.logger.TraceContext(ctx, "repl continue", slog.Int("pending_bytes", len(src)))

		return outcome{pending: true}

	default:
		e.pending.Reset()

		return outcome{err: err, source: src}
	}
}

// abort discards pending input, reporting whether there was any.
func (e *engine) abort() bool {
	had := e.pending.Len() > 0
	e.pending.Reset()

	return had
}

// isPending reports whether an incomplete construct is buffered.
func (e *engine) isPending() bool { return e.pending.Len() > 0 }

// buffered returns the pending input.
func (e *engine) buffered() string { return e.pending.String() }

// isBlank reports whether src holds nothing but whitespace, comments, and
// separators.
func isBlank(ctx context.Context, src string) bool {
	exprs, err := lang.ParseAll(ctx, src)

	return err == nil && len(exprs) == 0
}

// describeError renders err for display, followed by the offending source
// line when the error carries a position.
func describeError(err error, src string) string {
	msg := "error: " + err.Error()

	var le *lang.Error
	if errors.As(err, &le) {
		if snippet := le.Snippet(src); snippet != "" {
			msg += "\n" + strings.TrimRight(snippet, "\n")
		}
	}

	return msg
}
