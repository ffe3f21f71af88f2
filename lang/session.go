package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Result is the outcome of evaluating one top-level construct.
type Result struct {
	Expr  Expr
	Value float64
}

// Session evaluates successive inputs against one long-lived [Environment],
// so that let and define bindings persist from one input to the next.
//
// A Session is not safe for concurrent use; create one per caller.
type Session struct {
	env   *Environment
	cache *Cache
	opts  []Option
	cfg   config
}

// NewSession creates a session.
//
// Unless [WithEnvironment] is given, the session starts with
// [NewEnvironment]. Unless [WithCache] is given, it keeps a private parse
// cache of [DefaultCacheSize] sources.
func NewSession(opts ...Option) *Session {
	cfg := makeConfig(append([]Option{WithCache(NewCache(DefaultCacheSize))}, opts...)...)

	s := &Session{
		env:   cfg.env,
		cache: cfg.cache,
		opts:  opts,
		cfg:   cfg,
	}

	if s.env == nil {
		s.env = NewEnvironment()
	}

	return s
}

// Env returns the session environment.
func (s *Session) Env() *Environment { return s.env }

// Reset discards all bindings made during the session and restores the
// default environment.
func (s *Session) Reset() {
	s.env = NewEnvironment()

	s.cfg.logger.Debug("session reset")
}

// Exec parses src and evaluates each of its top-level constructs in order,
// returning the value of the last. Evaluation stops at the first error;
// bindings made by constructs before it are kept.
//
// Blank input (only whitespace, comments, or separators) is reported as
// [ErrIncomplete].
func (s *Session) Exec(ctx context.Context, src string) (float64, error) {
	exprs, err := s.parse(ctx, src)
	if err != nil {
		return 0, err
	}

	if len(exprs) == 0 {
		return 0, ErrIncomplete.Withf("expected expression")
	}

	var v float64

	for _, e := range exprs {
		if v, err = Evaluate(ctx, s.env, e, s.opts...); err != nil {
			return 0, err
		}
	}

	return v, nil
}

// Feed streams top-level constructs from r, evaluating each as it is parsed.
// Iteration stops after the first error, which is yielded. Any opts apply to
// the stream in addition to the session options, e.g. [WithChunkSize].
func (s *Session) Feed(ctx context.Context, r io.Reader, opts ...Option) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		stream := NewStream(r, append(slices.Clone(s.opts), opts...)...)
		defer stream.Close()

		count := 0

		defer func() {
			s.cfg.logger.DebugContext(ctx, "session feed done",
				slog.Int("construct_count", count),
			)
		}()

		for e, err := range stream.All(ctx) {
			if err != nil {
				yield(Result{}, err)

				return
			}

			count++

			v, err := Evaluate(ctx, s.env, e, s.opts...)
			if !yield(Result{Expr: e, Value: v}, err) || err != nil {
				return
			}
		}
	}
}

func (s *Session) parse(ctx context.Context, src string) ([]Expr, error) {
	if s.cache == nil || strings.TrimSpace(src) == "" {
		return ParseAll(ctx, src, s.opts...)
	}

	return s.cache.ParseAll(ctx, src, s.opts...)
}
