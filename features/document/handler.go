package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/backend/features/source"
	"inkwell/backend/internal/auth"
	"inkwell/backend/internal/gateway"
)

const jobKind = "document-processing"

type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Dispatcher interface {
	Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error)
}

type SourceStore interface {
	OwnerOf(ctx context.Context, id string) (string, error)
	UpdateProcessingStatus(ctx context.Context, id, status string) error
}

type Auditor interface {
	JobDispatched(ctx context.Context, kind, resourceID string)
	JobFailed(ctx context.Context, kind, resourceID, reason string)
}

type Config struct {
	ProjectURL string
	WebhookURL string
	Secret     string
}

type Handler struct {
	verifier   Verifier
	sources    SourceStore
	dispatcher Dispatcher
	auditor    Auditor
	cfg        Config
}

func NewHandler(verifier Verifier, sources SourceStore, dispatcher Dispatcher, auditor Auditor, cfg Config) *Handler {
	return &Handler{verifier: verifier, sources: sources, dispatcher: dispatcher, auditor: auditor, cfg: cfg}
}

type processRequest struct {
	SourceID   string `json:"sourceId"`
	FilePath   string `json:"filePath"`
	SourceType string `json:"sourceType"`
}

func (r processRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceID, validation.Required),
		validation.Field(&r.FilePath, validation.Required),
		validation.Field(&r.SourceType, validation.Required),
	)
}

// Process forwards a document to the external processor. Every gate is hard:
// a failure short-circuits the call with no later side effects.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
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

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}

	owner, err := h.sources.OwnerOf(ctx, req.SourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			gateway.WriteError(ctx, w, fmt.Errorf("%w: source not found", gateway.ErrNotFound))
			return
		}
		gateway.WriteError(ctx, w, err)
		return
	}
	if owner != userID {
		slog.WarnContext(ctx, "ownership mismatch", "owner", owner, "caller", userID, "source_id", req.SourceID)
		gateway.WriteError(ctx, w, fmt.Errorf("%w: source belongs to another user", gateway.ErrForbidden))
		return
	}

	// Deployment error, not a per-request one. Must not touch the status.
	if h.cfg.WebhookURL == "" || h.cfg.Secret == "" {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: document webhook URL or secret missing", gateway.ErrMisconfigured))
		return
	}

	gateway.BestEffort(ctx, "source processing status", func(ctx context.Context) error {
		return h.sources.UpdateProcessingStatus(ctx, req.SourceID, source.StatusProcessing)
	})

	payload := BuildPayload(req.SourceID, req.FilePath, req.SourceType, h.cfg.ProjectURL)

	outcome, err := h.dispatcher.Send(ctx, h.cfg.WebhookURL, payload)
	if err != nil {
		slog.ErrorContext(ctx, "document dispatch failed", "error", err, "source_id", req.SourceID)
		gateway.BestEffort(ctx, "source failed status", func(ctx context.Context) error {
			return h.sources.UpdateProcessingStatus(ctx, req.SourceID, source.StatusFailed)
		})
		h.auditor.JobFailed(ctx, jobKind, req.SourceID, err.Error())
		gateway.WriteError(ctx, w, err)
		return
	}

	h.auditor.JobDispatched(ctx, jobKind, req.SourceID)

	var passthrough any
	if err := json.Unmarshal(outcome.Body, &passthrough); err != nil {
		passthrough = string(outcome.Body)
	}
	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Document processing initiated",
		"data":    passthrough,
	})
}
