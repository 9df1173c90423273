package ingest

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

const (
	kindWebsites   = "multi-website-ingestion"
	kindCopiedText = "copied-text-ingestion"
)

type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Dispatcher interface {
	Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error)
}

type NotebookStore interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

type SourceStore interface {
	UpdateProcessingStatusMany(ctx context.Context, ids []string, status string) error
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
	notebooks  NotebookStore
	sources    SourceStore
	dispatcher Dispatcher
	auditor    Auditor
	cfg        Config
}

func NewHandler(verifier Verifier, notebooks NotebookStore, sources SourceStore, dispatcher Dispatcher, auditor Auditor, cfg Config) *Handler {
	return &Handler{verifier: verifier, notebooks: notebooks, sources: sources, dispatcher: dispatcher, auditor: auditor, cfg: cfg}
}

type ingestRequest struct {
	Type       string   `json:"type"`
	NotebookID string   `json:"notebookId"`
	URLs       []string `json:"urls"`
	SourceIDs  []string `json:"sourceIds"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp"`
}

func (r ingestRequest) Validate() error {
	switch r.Type {
	case TypeMultipleWebsites:
		return validation.ValidateStruct(&r,
			validation.Field(&r.NotebookID, validation.Required),
			validation.Field(&r.URLs, validation.Required),
			validation.Field(&r.SourceIDs, validation.Required),
			validation.Field(&r.Timestamp, validation.Required),
		)
	case TypeCopiedText:
		return validation.ValidateStruct(&r,
			validation.Field(&r.NotebookID, validation.Required),
			validation.Field(&r.Title, validation.Required),
			validation.Field(&r.Content, validation.Required),
			validation.Field(&r.SourceIDs, validation.Required),
			validation.Field(&r.Timestamp, validation.Required),
		)
	default:
		return fmt.Errorf("type: must be %q or %q", TypeMultipleWebsites, TypeCopiedText)
	}
}

func (r ingestRequest) kind() string {
	if r.Type == TypeCopiedText {
		return kindCopiedText
	}
	return kindWebsites
}

// Ingest forwards additional-source material (website lists or pasted text)
// to the ingestion processor.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
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

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: %v", gateway.ErrInvalidRequest, err))
		return
	}

	owner, err := h.notebooks.OwnerOf(ctx, req.NotebookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			gateway.WriteError(ctx, w, fmt.Errorf("%w: notebook not found", gateway.ErrNotFound))
			return
		}
		gateway.WriteError(ctx, w, err)
		return
	}
	if owner != userID {
		slog.WarnContext(ctx, "ownership mismatch", "owner", owner, "caller", userID, "notebook_id", req.NotebookID)
		gateway.WriteError(ctx, w, fmt.Errorf("%w: notebook belongs to another user", gateway.ErrForbidden))
		return
	}

	if h.cfg.WebhookURL == "" || h.cfg.Secret == "" {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: sources webhook URL or secret missing", gateway.ErrMisconfigured))
		return
	}

	var payload any
	if req.Type == TypeCopiedText {
		payload = BuildCopiedTextPayload(req.NotebookID, req.Title, req.Content, req.SourceIDs[0], req.Timestamp)
	} else {
		payload = BuildWebsitesPayload(req.NotebookID, req.URLs, req.SourceIDs, req.Timestamp)
	}

	outcome, err := h.dispatcher.Send(ctx, h.cfg.WebhookURL, payload)
	if err != nil {
		slog.ErrorContext(ctx, "ingestion dispatch failed", "error", err, "notebook_id", req.NotebookID)
		gateway.BestEffort(ctx, "source failed status", func(ctx context.Context) error {
			return h.sources.UpdateProcessingStatusMany(ctx, req.SourceIDs, source.StatusFailed)
		})
		h.auditor.JobFailed(ctx, req.kind(), req.NotebookID, err.Error())
		gateway.WriteError(ctx, w, err)
		return
	}

	h.auditor.JobDispatched(ctx, req.kind(), req.NotebookID)

	var passthrough any
	if err := json.Unmarshal(outcome.Body, &passthrough); err != nil {
		passthrough = string(outcome.Body)
	}
	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Source ingestion initiated",
		"data":    passthrough,
	})
}
