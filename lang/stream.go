package lang

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/bcalc/log"
)

// Stream parses successive top-level constructs from an [io.Reader].
//
// Input is read in chunks. A construct that is cut off by the end of a chunk
// is reparsed once more input arrives, and a construct is only accepted when
// input follows it or the reader is exhausted, so that e.g. "1" at the end of
// one chunk and "+ 2" at the start of the next yield the single construct
// "1 + 2". Error positions are relative to the start of the stream.
type Stream struct {
	r      io.ReadCloser
	buf    string
	chunk  []byte
	origin Position // position of buf[0] within the stream
	atEOF  bool
	joined bool  // the last construct ended without a separator
	err    error // sticky; io.EOF once exhausted
	cfg    config
	logger log.Logger
}

// NewStream creates a stream reading from r. The reader is not read until the
// first call to [Stream.Next].
func NewStream(r io.Reader, opts ...Option) *Stream {
	c := makeConfig(opts...)

	return &Stream{
		// Async read-ahead lets the next chunk load while the current one
		// is parsed and evaluated.
		r:      readahead.NewReader(r),
		chunk:  make([]byte, c.chunkSize),
		origin: Position{Line: 1, Column: 1},
		cfg:    c,
		logger: c.logger,
	}
}

// Next returns the next construct in the stream, or [io.EOF] when the input
// is exhausted. After any error, Next keeps returning that error.
func (s *Stream) Next(ctx context.Context) (Expr, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		p := newParser(s.buf, s.origin, s.cfg)
		p.skipSeparators()

		switch {
		case p.eof() && p.openComment && s.atEOF:
			return nil, s.fail(p.fail("*/"))

		case p.eof() && s.atEOF:
			s.err = io.EOF

			return nil, io.EOF

		case !p.eof() && p.pos == 0 && s.joined:
			return nil, s.fail(p.fail("separator"))

		case !p.eof():
			e, err := p.parseTop()

			switch {
			case err == nil:
				end, endPos := p.pos, p.position()

				// Accept only if something follows, or nothing ever will.
				p.skip()

				if !p.eof() || s.atEOF {
					s.joined = !separated(s.buf[:end])
					s.buf = s.buf[end:]
					s.origin = endPos

					s.logger.TraceContext(ctx, "stream construct",
						slog.String("kind", e.Kind().String()),
						slog.String("position", endPos.String()),
					)

					return e, nil
				}

			case IsIncomplete(err) && !s.atEOF:
				// Need more input.

			default:
				return nil, s.fail(err)
			}
		}

		if err := s.fill(ctx); err != nil {
			return nil, s.fail(err)
		}
	}
}

// All returns an iterator over the remaining constructs. Iteration stops
// after the first error, which is yielded; io.EOF is not.
func (s *Stream) All(ctx context.Context) iter.Seq2[Expr, error] {
	return func(yield func(Expr, error) bool) {
		for {
			e, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the underlying read-ahead buffers.
func (s *Stream) Close() error { return s.r.Close() }

func (s *Stream) fill(ctx context.Context) error {
	n, err := s.r.Read(s.chunk)
	s.buf += string(s.chunk[:n])

	s.logger.TraceContext(ctx, "stream read",
		slog.Int("bytes", n),
		slog.Int("buffered", len(s.buf)),
	)

	switch {
	case errors.Is(err, io.EOF):
		s.atEOF = true

		return nil

	case err != nil:
		return ErrReadInput.Wrap(err).With(slog.Int("offset", s.origin.Offset+len(s.buf)))
	}

	return nil
}

func (s *Stream) fail(err error) error {
	s.err = err

	return err
}
