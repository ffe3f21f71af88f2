package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/bcalc/lang"
	"github.com/ardnew/bcalc/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey  struct{}
	inputKey   struct{}
	sessionKey struct{}
	sourcesKey struct{}
	pathKey    struct{}
)

// WithOutput returns a new context.Context whose commands write their results
// to w instead of [os.Stdout].
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithInput returns a new context.Context whose commands read the source
// named "-" from r instead of [os.Stdin].
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// WithSessionOptions returns a new context.Context carrying the options used
// to create every [lang.Session] a command evaluates in.
func WithSessionOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, sessionKey{}, opts)
}

func sessionOptionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(sessionKey{}).([]lang.Option)

	return opts
}

// WithSearchPath returns a new context.Context carrying the directories
// searched for scripts named on the command line.
func WithSearchPath(ctx context.Context, path []string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

func searchPathFrom(ctx context.Context) []string {
	path, _ := ctx.Value(pathKey{}).([]string)

	return path
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing the prelude
// scripts evaluated into every new session before a command runs.
//
// Sources are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin source placed
// last so it reads after all regular files.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourcesKey{}, uniqueSources(sources))
}

func sourceFilesFrom(ctx context.Context) []string {
	sources, _ := ctx.Value(sourcesKey{}).([]string)

	return sources
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

func uniqueSources(sources []string) []string {
	var (
		unique   []string
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		key, ok := resolveFileKey(src)
		if !ok {
			// Keep it so that opening it reports the problem.
			unique = append(unique, src)

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, src)
	}

	if hasStdin {
		unique = append(unique, stdinSource)
	}

	return unique
}

// resolveFileKey resolves symlinks and relative paths of path to the
// device/inode pair of the file it refers to.
func resolveFileKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// openSource opens name for reading, or returns the context input for "-".
func openSource(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == stdinSource {
		return io.NopCloser(inputFrom(ctx)), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, ErrOpenSource.With(slog.String("file", name)).Wrap(err)
	}

	return f, nil
}

// readSource reads the whole of name, or the context input for "-".
func readSource(ctx context.Context, name string) (string, error) {
	r, err := openSource(ctx, name)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var b strings.Builder

	if _, err := io.Copy(&b, r); err != nil {
		return "", ErrOpenSource.With(slog.String("file", name)).Wrap(err)
	}

	return b.String(), nil
}

// NewSession creates a session with the options stored in ctx and evaluates
// the prelude scripts into it.
func NewSession(ctx context.Context) (*lang.Session, error) {
	s := lang.NewSession(sessionOptionsFrom(ctx)...)

	for _, name := range sourceFilesFrom(ctx) {
		if err := feedPrelude(ctx, s, name); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func feedPrelude(ctx context.Context, s *lang.Session, name string) error {
	r, err := openSource(ctx, name)
	if err != nil {
		return ErrPrelude.Wrap(err)
	}
	defer r.Close()

	count := 0

	for _, err := range s.Feed(ctx, r) {
		if err != nil {
			return ErrPrelude.With(slog.String("file", name)).Wrap(err)
		}

		count++
	}

	log.DebugContext(ctx, "prelude loaded",
		slog.String("file", name),
		slog.Int("construct_count", count),
	)

	return nil
}

// printResult writes the rendered value of r unless r is a definition, whose
// value carries no information.
func printResult(w io.Writer, r lang.Result) error {
	if r.Expr != nil && r.Expr.Kind() == lang.KindDefine {
		return nil
	}

	_, err := io.WriteString(w, lang.FormatResult(r.Value)+"\n")

	return err
}

// withSnippet attaches the offending source line of a positioned language
// error to err.
func withSnippet(err error, file, src string) error {
	le := lang.WrapError(err)

	attrs := []slog.Attr{slog.String("file", file)}

	if snippet := le.Snippet(src); snippet != "" {
		attrs = append(attrs, slog.String("source", strings.TrimRight(snippet, "\n")))
	}

	return le.With(attrs...)
}
