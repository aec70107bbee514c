// Package envutil reads typed configuration from environment variables.
//
// Every reader consults, in order: overrides carried by the context (see
// WithEnvOverride and WithEnvFile), then the process environment. Options such
// as Default and Validate shape the result:
//
//	pageSize := envutil.Int[int](ctx, "LITECOLLECTIONS_PAGE_SIZE",
//	    envutil.Default(256),
//	    envutil.Validate(positive)).ValueOrElse(256)
package envutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var errUnknownLogLevel = fmt.Errorf("%w: unknown log level", ErrBadEnvVar)

// get returns a Reader for the given key, honoring context overrides.
func get(ctx context.Context, key string) Reader[string] {
	if val, ok := getEnvOverride(ctx, key); ok {
		return Reader[string]{key: key, present: true, value: val}
	}

	val, ok := os.LookupEnv(key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String returns a Reader for the given environment variable key.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool parses values accepted by strconv.ParseBool.
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(get(ctx, key), strconv.ParseBool), opts)
}

// Intish is the set of integer types Int can produce.
type Intish interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Int parses a base-10 integer and converts it to I.
func Int[I Intish](ctx context.Context, key string, opts ...Option[I]) Reader[I] {
	rdr := Map(get(ctx, key), func(s string) (I, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)

		return I(n), err
	})

	return apply(rdr, opts)
}

// Duration parses values accepted by time.ParseDuration.
func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(ctx, key), time.ParseDuration), opts)
}

// SlogLevel parses debug, info, warn or error (case-insensitive).
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	rdr := Map(get(ctx, key), func(s string) (slog.Level, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "debug":
			return slog.LevelDebug, nil
		case "info":
			return slog.LevelInfo, nil
		case "warn":
			return slog.LevelWarn, nil
		case "error":
			return slog.LevelError, nil
		default:
			return 0, fmt.Errorf("%w: %q", errUnknownLogLevel, s)
		}
	})

	return apply(rdr, opts)
}
