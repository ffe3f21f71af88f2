package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ardnew/bcalc/lang"
	"github.com/ardnew/bcalc/log"
	"github.com/ardnew/bcalc/pkg"
)

// Run evaluates script files in one session, streaming each.
type Run struct {
	Files     []string `arg:"" help:"Script file(s), searched for in --path, or '-' for stdin" name:"file"`
	Last      bool     `help:"Print only the value of the final construct"`
	ChunkSize int      `default:"${chunkSize}"                                                 help:"Bytes read from a script at a time"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := NewSession(ctx)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)
	path := searchPathFrom(ctx)

	var (
		last lang.Result
		seen bool
	)

	for _, name := range r.Files {
		file, found := pkg.FindScript(name, path)
		if !found {
			return ErrScriptNotFound.With(
				slog.String("file", name),
				slog.String("path", strings.Join(path, ", ")),
			)
		}

		err := r.feed(ctx, s, file, func(res lang.Result) error {
			last, seen = res, true

			if r.Last {
				return nil
			}

			return printResult(w, res)
		})
		if err != nil {
			return err
		}
	}

	if r.Last && seen {
		_, err = io.WriteString(w, lang.FormatResult(last.Value)+"\n")
	}

	return err
}

func (r *Run) feed(
	ctx context.Context,
	s *lang.Session,
	file string,
	emit func(lang.Result) error,
) error {
	src, err := openSource(ctx, file)
	if err != nil {
		return err
	}
	defer src.Close()

	// Keep a copy of what was read for error snippets.
	var text sourceCopy

	in := io.TeeReader(src, &text)
	count := 0

	for res, err := range s.Feed(ctx, in, lang.WithChunkSize(r.ChunkSize)) {
		if err != nil {
			var le *lang.Error
			if errors.As(err, &le) {
				err = withSnippet(le, file, text.String())
			}

			return ErrEvaluate.
				With(slog.String("command", "run"), slog.Int("construct", count+1)).
				Wrap(err)
		}

		count++

		if err := emit(res); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "script complete",
		slog.String("file", file),
		slog.Int("construct_count", count),
	)

	return nil
}

// sourceCopy accumulates the bytes read from a script. The stream reads
// ahead on its own goroutine, which may still be writing when an error is
// reported.
type sourceCopy struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *sourceCopy) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf.Write(p)
}

func (c *sourceCopy) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf.String()
}
