package lang

import "github.com/ardnew/bcalc/log"

// DefaultMaxDepth is the default maximum number of nested user-function calls
// permitted during evaluation. Users may modify this before evaluating to
// change the default.
var DefaultMaxDepth = 1000

// DefaultMaxNesting is the default maximum syntactic nesting depth (blocks,
// parentheses, and right-recursive exponents) accepted by the parser.
var DefaultMaxNesting = 256

// DefaultChunkSize is the default number of bytes a [Stream] reads at a time.
var DefaultChunkSize = 4096

type config struct {
	logger     log.Logger
	maxDepth   int
	maxNesting int
	chunkSize  int
	env        *Environment
	cache      *Cache
}

// Option configures parsing, evaluation, streaming, or session behavior.
// Options that do not apply to an operation are ignored by it.
type Option func(*config)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxDepth sets the maximum nested call depth during evaluation.
// A depth of zero or less removes the limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = depth }
}

// WithMaxNesting sets the maximum syntactic nesting depth accepted by the
// parser. A depth of zero or less removes the limit.
func WithMaxNesting(depth int) Option {
	return func(c *config) { c.maxNesting = depth }
}

// WithChunkSize sets the number of bytes a [Stream] requests per read.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithEnvironment sets the environment a [Session] evaluates against.
func WithEnvironment(env *Environment) Option {
	return func(c *config) { c.env = env }
}

// WithCache sets the parse cache used by a [Session].
// A nil cache disables caching.
func WithCache(cache *Cache) Option {
	return func(c *config) { c.cache = cache }
}

func makeConfig(opts ...Option) config {
	c := config{
		maxDepth:   DefaultMaxDepth,
		maxNesting: DefaultMaxNesting,
		chunkSize:  DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
