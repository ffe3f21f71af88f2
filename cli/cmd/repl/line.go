package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/ardnew/bcalc/lang"
)

const (
	linePrompt     = "> "
	lineContPrompt = ". "

	// lineCommand prefixes control commands in the plain REPL.
	lineCommand = ":"
)

// lineReader is the subset of [liner.State] the plain REPL reads with.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// RunLine starts the plain line-oriented REPL evaluating in s. It reads from
// the terminal through liner and writes results to cfg.Output.
func RunLine(ctx context.Context, s *lang.Session, cfg Config) error {
	history := loadHistory(ctx, cfg)
	eng := newEngine(s, cfg.Logger)

	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)
	state.SetCompleter(func(line string) []string {
		if strings.HasPrefix(line, lineCommand) {
			return completeCommand(line)
		}

		return completeLine(eng.session.Env(), line)
	})

	for _, mode := range []inputMode{modeEval, modeCtrl} {
		for line := range history.Lines(mode) {
			if mode == modeCtrl {
				line = lineCommand + line
			}

			state.AppendHistory(line)
		}
	}

	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}

	return runLines(ctx, eng, state, w, history)
}

// runLines reads and evaluates lines from r until end of input or a quit
// command. A failed evaluation is reported to w and does not end the loop.
func runLines(
	ctx context.Context,
	eng *engine,
	r lineReader,
	w io.Writer,
	history *History,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}

		prompt := linePrompt
		if eng.isPending() {
			prompt = lineContPrompt
		}

		line, err := r.Prompt(prompt)

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			// Ctrl-C discards unfinished input.
			eng.abort()

			continue

		case errors.Is(err, io.EOF):
			fmt.Fprintln(w)

			return nil

		case err != nil:
			return err
		}

		input := strings.TrimSpace(line)

		if cmd, ok := strings.CutPrefix(input, lineCommand); ok && !eng.isPending() {
			r.AppendHistory(input)
			saveHistory(ctx, eng, history, cmd, modeCtrl)

			if quit := runLineCommand(eng, w, strings.TrimSpace(cmd)); quit {
				return nil
			}

			continue
		}

		if input != "" {
			r.AppendHistory(input)
			saveHistory(ctx, eng, history, input, modeEval)
		}

		out := eng.submit(ctx, line)

		switch {
		case out.pending, out.blank:

		case out.err != nil:
			fmt.Fprintln(w, describeError(out.err, out.source))

		default:
			fmt.Fprintln(w, lang.FormatResult(out.value))
		}
	}
}

func saveHistory(ctx context.Context, eng *engine, h *History, line string, mode inputMode) {
	if err := h.Add(line, mode); err != nil {
		eng.logger.DebugContext(ctx, "could not save history", slog.Any("error", err))
	}
}

// runLineCommand runs a control command, reporting whether it ends the REPL.
func runLineCommand(eng *engine, w io.Writer, cmd string) bool {
	switch cmd {
	case "q", "quit", "exit":
		return true

	case "h", "help":
		fmt.Fprintln(w, "commands: "+lineCommand+strings.Join(lineCommands(), " "+lineCommand))

	case "l", "list":
		for name, b := range eng.session.Env().All() {
			fmt.Fprintln(w, lang.Describe(name, b))
		}

	case "r", "reset":
		eng.abort()
		eng.session.Reset()

	default:
		fmt.Fprintf(w, "unknown command: %s (try %shelp)\n", cmd, lineCommand)
	}

	return false
}

// lineCommands are the control commands the plain REPL supports.
func lineCommands() []string { return []string{"help", "list", "reset", "quit"} }

func completeCommand(line string) []string {
	var out []string

	for _, cmd := range lineCommands() {
		if full := lineCommand + cmd; strings.HasPrefix(full, line) {
			out = append(out, full)
		}
	}

	return out
}
