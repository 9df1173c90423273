package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/backend/internal/auth"
	"inkwell/backend/internal/gateway"
)

const jobKind = "chat-message"

type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Dispatcher interface {
	Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error)
}

type Auditor interface {
	JobDispatched(ctx context.Context, kind, resourceID string)
	JobFailed(ctx context.Context, kind, resourceID, reason string)
}

type Config struct {
	WebhookURL string
	Secret     string
}

type Handler struct {
	verifier   Verifier
	dispatcher Dispatcher
	auditor    Auditor
	cfg        Config
	now        func() time.Time
}

func NewHandler(verifier Verifier, dispatcher Dispatcher, auditor Auditor, cfg Config) *Handler {
	return &Handler{verifier: verifier, dispatcher: dispatcher, auditor: auditor, cfg: cfg, now: time.Now}
}

// relayRequest deliberately has no user field: the forwarded identity is
// always the verified one.
type relayRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (r relayRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, validation.Required),
		validation.Field(&r.Message, validation.Required),
	)
}

// Relay forwards one chat message. Session ids are treated as capability
// tokens, so no resource ownership is resolved for this kind.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := auth.BearerFromRequest(r)
	if err != nil {
		gateway.WriteError(ctx, w, err)
		return
	}

	userID, err := h.verifier.Verify(ctx, token)
	if err != nil {
		gateway.WriteError(ctx, w, err)
		return
	}

	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}

	if h.cfg.WebhookURL == "" || h.cfg.Secret == "" {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: chat webhook URL or secret missing", gateway.ErrMisconfigured))
		return
	}

	payload := BuildPayload(req.SessionID, req.Message, userID, h.now())

	outcome, err := h.dispatcher.Send(ctx, h.cfg.WebhookURL, payload)
	if err != nil {
		slog.ErrorContext(ctx, "chat dispatch failed", "error", err, "session_id", req.SessionID)
		h.auditor.JobFailed(ctx, jobKind, req.SessionID, err.Error())
		gateway.WriteError(ctx, w, err)
		return
	}

	h.auditor.JobDispatched(ctx, jobKind, req.SessionID)

	var passthrough any
	if err := json.Unmarshal(outcome.Body, &passthrough); err != nil {
		passthrough = string(outcome.Body)
	}
	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"data":    passthrough,
	})
}
