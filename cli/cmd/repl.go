package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/bcalc/cli/cmd/repl"
	"github.com/ardnew/bcalc/log"
)

// historyFile is the REPL history file name within the cache directory.
const historyFile = "history.utf8"

// Repl starts an interactive session.
type Repl struct {
	Plain   bool `help:"Use the plain line editor instead of the full-screen interface"`
	History bool `default:"true" help:"Persist input history in the cache directory" negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := NewSession(ctx)
	if err != nil {
		return err
	}

	cfg := repl.Config{
		HistoryPath: r.historyPath(ctx),
		Output:      outputFrom(ctx),
		Logger:      log.Default(),
	}

	log.DebugContext(ctx, "repl start",
		slog.Bool("plain", r.Plain),
		slog.String("history", cfg.HistoryPath),
	)

	if r.Plain {
		return repl.RunLine(ctx, s, cfg)
	}

	return repl.Run(ctx, s, cfg)
}

func (r *Repl) historyPath(ctx context.Context) string {
	if !r.History {
		return ""
	}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	dir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok || dir == "" {
		return ""
	}

	return filepath.Join(dir, historyFile)
}
