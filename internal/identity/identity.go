// Package identity carries the authenticated caller from the auth middleware
// to handlers through the request context.
package identity

import "context"

type ctxMarker struct{}

var ctxMarkerKey = &ctxMarker{}

// Identity is the minimal view of the authenticated user.
type Identity struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}

// WithContext returns a copy of ctx carrying id.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, id)
}

// FromContext returns the identity attached by WithContext, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxMarkerKey).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}
