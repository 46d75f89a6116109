// Package logger builds the process zap logger and carries request-scoped
// loggers through a context.Context.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxMarker struct{}

var (
	ctxMarkerKey = &ctxMarker{}
	nopLogger    = zap.NewNop()
)

// New returns a production logger when production is set, a development
// logger otherwise.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// FromContext retrieves the logger embedded with ToContext, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(ctxMarkerKey).(*zap.Logger)
	if !ok {
		return nopLogger
	}
	return l
}

// ToContext embeds a *zap.Logger in a context.Context.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, l)
}
