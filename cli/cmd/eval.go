package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/bcalc/lang"
)

// Eval evaluates an expression given on the command line.
type Eval struct {
	Expr []string `arg:"" help:"Expression to evaluate; multiple arguments are joined with spaces" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := NewSession(ctx)
	if err != nil {
		return err
	}

	src := strings.Join(e.Expr, " ")

	v, err := s.Exec(ctx, src)
	if err != nil {
		return ErrEvaluate.
			With(slog.String("command", "eval")).
			Wrap(withSnippet(err, "<args>", src))
	}

	_, err = io.WriteString(outputFrom(ctx), lang.FormatResult(v)+"\n")

	return err
}
