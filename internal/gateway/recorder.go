package gateway

import (
	"context"
	"log/slog"
)

// BestEffort runs a status write that must never govern the caller's
// response. Failures are logged and swallowed so a broken status write
// cannot mask the original dispatch error.
func BestEffort(ctx context.Context, op string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		slog.ErrorContext(ctx, "best-effort write failed", "op", op, "error", err)
	}
}
