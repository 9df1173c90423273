package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"inkwell/backend/internal/middleware"
)

func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// WriteError maps the error kind to an HTTP status and emits the
// { error } envelope every endpoint answers failures with.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	WriteJSON(ctx, w, StatusFor(err), map[string]any{
		"error":         err.Error(),
		"correlationId": middleware.GetCorrelationID(ctx),
	})
}
