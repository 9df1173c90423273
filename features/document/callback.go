package document

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/backend/features/source"
	"inkwell/backend/internal/gateway"
)

type CallbackStore interface {
	ApplyCallback(ctx context.Context, id, status string, title, content *string) error
}

// CallbackHandler receives the processor's verdict for a dispatched
// document. It authenticates with the shared dispatch secret, not a user
// credential, and writes with the privileged tier.
type CallbackHandler struct {
	sources CallbackStore
	secret  string
}

func NewCallbackHandler(sources CallbackStore, secret string) *CallbackHandler {
	return &CallbackHandler{sources: sources, secret: secret}
}

type callbackRequest struct {
	SourceID string  `json:"source_id"`
	Status   string  `json:"status"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
}

func (r callbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceID, validation.Required),
		validation.Field(&r.Status, validation.Required, validation.In(source.StatusCompleted, source.StatusFailed)),
	)
}

func (h *CallbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.secret == "" {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: callback secret missing", gateway.ErrMisconfigured))
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(h.secret)) != 1 {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: invalid callback credential", gateway.ErrUnauthenticated))
		return
	}

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}

	if err := h.sources.ApplyCallback(ctx, req.SourceID, req.Status, req.Title, req.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			gateway.WriteError(ctx, w, fmt.Errorf("%w: source not found", gateway.ErrNotFound))
			return
		}
		gateway.WriteError(ctx, w, err)
		return
	}

	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{"success": true})
}
