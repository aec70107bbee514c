package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amp-labs/litecollections/envutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultPageSize is how many rows a lazy traversal fetches per statement.
	DefaultPageSize = 256

	// DefaultBusyTimeout bounds how long a statement waits on a lock held by
	// another connection to the same file.
	DefaultBusyTimeout = 5 * time.Second
)

var errNonPositive = errors.New("must be positive")

// Options configures how a storage resource is opened.
type Options struct {
	// Path names the resource. Memory (the default) is an ephemeral,
	// process-local store; anything else is a database file.
	Path string

	// PageSize is the number of rows fetched per statement by lazy traversals.
	PageSize int

	// JournalMode and Synchronous are applied as PRAGMAs when non-empty.
	JournalMode string
	Synchronous string

	BusyTimeout time.Duration

	// Logger receives statement traces. Nil means logger.Get(ctx).
	Logger *slog.Logger

	// TracerProvider creates the spans around each statement.
	TracerProvider trace.TracerProvider
}

// Option is a functional option for Open.
type Option func(*Options)

// DefaultOptions reads defaults from the environment (or overrides carried by
// ctx): LITECOLLECTIONS_PATH, LITECOLLECTIONS_PAGE_SIZE,
// LITECOLLECTIONS_JOURNAL_MODE, LITECOLLECTIONS_SYNCHRONOUS and
// LITECOLLECTIONS_BUSY_TIMEOUT.
func DefaultOptions(ctx context.Context) Options {
	positive := envutil.Validate(func(n int) error {
		if n <= 0 {
			return fmt.Errorf("page size %d: %w", n, errNonPositive)
		}

		return nil
	})

	return Options{
		Path:           envutil.String(ctx, "LITECOLLECTIONS_PATH", envutil.Default(Memory)).ValueOrElse(Memory),
		PageSize:       envutil.Int[int](ctx, "LITECOLLECTIONS_PAGE_SIZE", positive).ValueOrElse(DefaultPageSize),
		JournalMode:    envutil.String(ctx, "LITECOLLECTIONS_JOURNAL_MODE").ValueOrElse(""),
		Synchronous:    envutil.String(ctx, "LITECOLLECTIONS_SYNCHRONOUS").ValueOrElse(""),
		BusyTimeout:    envutil.Duration(ctx, "LITECOLLECTIONS_BUSY_TIMEOUT").ValueOrElse(DefaultBusyTimeout),
		TracerProvider: otel.GetTracerProvider(),
	}
}

// WithPath selects the storage resource. Use Memory for an ephemeral store.
func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

// WithPageSize sets how many rows lazy traversals fetch per statement.
// Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.PageSize = n
		}
	}
}

// WithJournalMode sets PRAGMA journal_mode, e.g. "WAL" or "DELETE".
func WithJournalMode(mode string) Option {
	return func(o *Options) {
		o.JournalMode = mode
	}
}

// WithSynchronous sets PRAGMA synchronous, e.g. "NORMAL" or "OFF".
func WithSynchronous(mode string) Option {
	return func(o *Options) {
		o.Synchronous = mode
	}
}

// WithBusyTimeout sets PRAGMA busy_timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.BusyTimeout = d
	}
}

// WithLogger routes statement traces to logger instead of the context's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithTracerProvider sets where statement spans are sent.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

// pragmas lists the statements run once after the connection is opened.
// See https://www.sqlite.org/pragma.html
func (o Options) pragmas() []string {
	var out []string

	if o.JournalMode != "" {
		out = append(out, "PRAGMA journal_mode = "+o.JournalMode)
	}

	if o.Synchronous != "" {
		out = append(out, "PRAGMA synchronous = "+o.Synchronous)
	}

	if o.BusyTimeout > 0 {
		out = append(out, fmt.Sprintf("PRAGMA busy_timeout = %d", o.BusyTimeout.Milliseconds()))
	}

	return out
}
