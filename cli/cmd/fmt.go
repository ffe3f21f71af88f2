package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/bcalc/lang"
)

// Fmt parses a script and writes it back in canonical form.
type Fmt struct {
	Indent int `default:"2" help:"Indent width for block bodies; 0 writes one line" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, f.Source)
	if err != nil {
		return err
	}

	return lang.Format(outputFrom(ctx), f.Indent, exprs...)
}

// AST parses a script and writes its syntax tree as structured data.
type AST struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format (${enum})"  short:"f"`
	Indent int    `default:"2"                     help:"Indent width; 0 writes compact output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, a.Source)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	switch a.Format {
	case "yaml":
		if err := lang.FormatYAML(ctx, w, a.Indent, exprs...); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	case "json":
		if err := lang.FormatJSON(ctx, w, a.Indent, exprs...); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	default:
		return ErrInvalidFormat.With(
			slog.String("format", a.Format),
			slog.String("valid", "yaml, json"),
		)
	}

	return nil
}

// parseSource parses the whole of the named source. The parse error, if any,
// carries the offending line.
func parseSource(ctx context.Context, name string) ([]lang.Expr, error) {
	src, err := readSource(ctx, name)
	if err != nil {
		return nil, err
	}

	exprs, err := lang.ParseAll(ctx, src, sessionOptionsFrom(ctx)...)
	if err != nil {
		return nil, withSnippet(err, name, src)
	}

	return exprs, nil
}
