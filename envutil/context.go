package envutil

import (
	"context"
	"maps"
)

type envContextKey struct{}

// WithEnvOverride returns a context in which key reads as value, regardless of
// the process environment.
func WithEnvOverride(ctx context.Context, key string, value string) context.Context {
	return WithEnvOverrides(ctx, map[string]string{key: value})
}

// WithEnvOverrides is WithEnvOverride for several keys at once. Later
// overrides win over earlier ones.
func WithEnvOverrides(ctx context.Context, env map[string]string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	merged := make(map[string]string)

	if prev, ok := ctx.Value(envContextKey{}).(map[string]string); ok {
		maps.Copy(merged, prev)
	}

	maps.Copy(merged, env)

	return context.WithValue(ctx, envContextKey{}, merged)
}

// WithEnvFile loads a .yaml, .yml or .json env file and applies its entries
// as overrides.
func WithEnvFile(ctx context.Context, path string) (context.Context, error) {
	env, err := LoadEnvFile(path)
	if err != nil {
		return ctx, err
	}

	return WithEnvOverrides(ctx, env), nil
}

func getEnvOverride(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}

	env, ok := ctx.Value(envContextKey{}).(map[string]string)
	if !ok {
		return "", false
	}

	val, ok := env[key]

	return val, ok
}
