package models

import "context"

type riderCtxKey struct{}

// WithRider attaches the signed-in rider to the context.
func WithRider(ctx context.Context, r Rider) context.Context {
	return context.WithValue(ctx, riderCtxKey{}, r)
}

// RiderFromContext returns the rider attached by WithRider.
func RiderFromContext(ctx context.Context) (Rider, bool) {
	r, ok := ctx.Value(riderCtxKey{}).(Rider)
	return r, ok
}
