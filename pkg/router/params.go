package router

import (
	"context"
	"net/http"
)

type paramsKey struct{}

// Params maps the named segments of a matched pattern to their values.
type Params map[string]string

// Get returns the value for key, or "" when the pattern has no such segment.
func (p Params) Get(key string) string {
	return p[key]
}

// WithParams stores params on ctx for handlers further down the chain.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext returns the params stored by the router, if any.
func ParamsFromContext(ctx context.Context) (Params, bool) {
	params, ok := ctx.Value(paramsKey{}).(Params)
	return params, ok
}

// Param returns the value of the URL parameter key of the matched route.
func Param(r *http.Request, key string) string {
	params, _ := ParamsFromContext(r.Context())
	return params.Get(key)
}
