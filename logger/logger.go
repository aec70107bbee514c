// Package logger configures process-wide structured logging and hands out
// loggers enriched with values carried by a context.
//
// Library code never owns a logger of its own. It asks Get for one, which
// resolves to (in order) a logger injected into the context with WithLogger,
// or the process default installed by ConfigureLogging.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/litecollections/envutil"
)

// Default name of the subsystem, set by ConfigureLogging.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes ConfigureLoggingWithOptions, which mutates slog's
// and log's process defaults.
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer
}

// ConfigureLoggingWithOptions installs a text or JSON handler as the slog
// default (and redirects the legacy log package to it). It returns the new
// default logger.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.MinLevel}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// ErrInvalidLogOutput is returned when an invalid log output destination is specified.
var ErrInvalidLogOutput = errors.New("invalid log output")

// ConfigureLogging configures logging from LOG_JSON, LOG_LEVEL,
// LEGACY_LOG_LEVEL and LOG_OUTPUT (stdout or stderr), then applies opts.
func ConfigureLogging(ctx context.Context, app string, opts ...Option) (*slog.Logger, error) {
	output, err := envutil.Map(envutil.String(ctx, "LOG_OUTPUT", envutil.Default("stdout")),
		func(outName string) (io.Writer, error) {
			switch outName {
			case "stdout":
				return os.Stdout, nil
			case "stderr":
				return os.Stderr, nil
			default:
				return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, outName)
			}
		}).Value()
	if err != nil {
		return nil, err
	}

	minLevel, err := envutil.SlogLevel(ctx, "LOG_LEVEL", envutil.Default(slog.LevelInfo)).Value()
	if err != nil {
		return nil, err
	}

	options := Options{
		Subsystem:   app,
		JSON:        envutil.Bool(ctx, "LOG_JSON", envutil.Default(false)).ValueOrElse(false),
		MinLevel:    minLevel,
		LegacyLevel: envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrElse(slog.LevelInfo),
		Output:      output,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options), nil
}

// WithLogger injects a logger that Get returns for this context instead of
// the process default.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("logger"), logger)
}

// WithMuted suppresses all logging for operations run with the returned context.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the subsystem name reported by loggers from Get.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem from the context, falling back to the
// default set by ConfigureLogging.
func GetSubsystem(ctx context.Context) string {
	if ctx != nil {
		if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
			return val
		}
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// With returns a new context with the given key-value pairs, which Get adds
// to every logger it returns for that context.
func With(ctx context.Context, values ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(values) == 0 {
		return ctx
	}

	vals := append(getValues(ctx), values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any {
	vals, _ := ctx.Value(contextKey("loggerValues")).([]any)

	return vals
}

// nullHandler discards everything. It backs muted contexts.
type nullHandler struct{}

func (n *nullHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (n *nullHandler) Handle(context.Context, slog.Record) error { return nil }
func (n *nullHandler) WithAttrs([]slog.Attr) slog.Handler        { return n }
func (n *nullHandler) WithGroup(string) slog.Handler             { return n }

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns a logger for the given context (or the background context if
// none is given).
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := context.Background()

	for _, c := range ctx {
		if c != nil {
			realCtx = c

			break
		}
	}

	if isMuted(realCtx) {
		return nullLogger
	}

	logger, ok := realCtx.Value(contextKey("logger")).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.Default()
	}

	if sub := GetSubsystem(realCtx); sub != "" {
		logger = logger.With("subsystem", sub)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}
