package nodes

import "context"

type paramsKey struct{}

// WithParams attaches CLI parameter values to the run context. cliparam
// nodes resolve their values from here at run time.
func WithParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext extracts the CLI parameter values, or nil.
func ParamsFromContext(ctx context.Context) map[string]string {
	params, _ := ctx.Value(paramsKey{}).(map[string]string)
	return params
}
