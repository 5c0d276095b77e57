package skema

import (
	"context"
	"reflect"
)

// serviceKey is a unique key per type parameter T for context storage.
type serviceKey[T any] struct{}

// WithService stores a typed service instance in the context passed to
// validation, where custom Go hooks can look it up.
func WithService[T any](ctx context.Context, svc T) context.Context {
	return context.WithValue(ctx, serviceKey[T]{}, any(svc))
}

// Service retrieves a typed service instance from context.
func Service[T any](ctx context.Context) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v := ctx.Value(serviceKey[T]{})
	if v == nil {
		return zero, false
	}
	if tv, ok := v.(T); ok {
		return tv, true
	}
	return zero, false
}

// RequireService returns the service, or Issues with a dependency_unavailable
// issue that a custom hook can return as is.
func RequireService[T any](ctx context.Context) (T, error) {
	if v, ok := Service[T](ctx); ok {
		return v, nil
	}
	var zero T
	name := reflect.TypeOf((*T)(nil)).Elem().String()
	return zero, Issues{NewIssue(ErrorKindValue, CodeDependencyUnavailable, nil, map[string]any{"service": name})}
}
