package generation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/backend/features/notebook"
	"inkwell/backend/internal/auth"
	"inkwell/backend/internal/gateway"
)

const jobKind = "content-generation"

const (
	defaultIcon  = "📝"
	defaultColor = "gray"
)

type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Dispatcher interface {
	Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error)
}

type NotebookStore interface {
	OwnerOf(ctx context.Context, id string) (string, error)
	UpdateGenerationStatus(ctx context.Context, id, status string) error
	ApplyGenerated(ctx context.Context, id string, gen notebook.Generated) error
}

type ContentStore interface {
	FirstContentForNotebook(ctx context.Context, notebookID string) (string, error)
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
	contents   ContentStore
	dispatcher Dispatcher
	auditor    Auditor
	cfg        Config
}

func NewHandler(verifier Verifier, notebooks NotebookStore, contents ContentStore, dispatcher Dispatcher, auditor Auditor, cfg Config) *Handler {
	return &Handler{verifier: verifier, notebooks: notebooks, contents: contents, dispatcher: dispatcher, auditor: auditor, cfg: cfg}
}

type generateRequest struct {
	NotebookID string `json:"notebookId"`
	SourceType string `json:"sourceType"`
	FilePath   string `json:"filePath"`
}

func (r generateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NotebookID, validation.Required),
		validation.Field(&r.SourceType, validation.Required),
	)
}

// Generate asks the external processor to produce notebook metadata (title,
// description, icon, example questions) from the notebook's first source.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
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

	var req generateRequest
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

	// Requests without a file fall back to the notebook's stored content.
	var payload Payload
	if req.FilePath != "" {
		payload = BuildFilePayload(req.SourceType, req.FilePath)
	} else {
		content, err := h.contents.FirstContentForNotebook(ctx, req.NotebookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				gateway.WriteError(ctx, w, fmt.Errorf("%w: notebook has no stored content to generate from", gateway.ErrInvalidRequest))
				return
			}
			gateway.WriteError(ctx, w, err)
			return
		}
		payload = BuildContentPayload(req.SourceType, content)
	}

	if h.cfg.WebhookURL == "" || h.cfg.Secret == "" {
		gateway.WriteError(ctx, w, fmt.Errorf("%w: generation webhook URL or secret missing", gateway.ErrMisconfigured))
		return
	}

	gateway.BestEffort(ctx, "notebook generating status", func(ctx context.Context) error {
		return h.notebooks.UpdateGenerationStatus(ctx, req.NotebookID, notebook.StatusGenerating)
	})

	outcome, err := h.dispatcher.Send(ctx, h.cfg.WebhookURL, payload)
	if err != nil {
		slog.ErrorContext(ctx, "generation dispatch failed", "error", err, "notebook_id", req.NotebookID)
		h.markFailed(ctx, req.NotebookID)
		h.auditor.JobFailed(ctx, jobKind, req.NotebookID, err.Error())
		gateway.WriteError(ctx, w, err)
		return
	}

	h.auditor.JobDispatched(ctx, jobKind, req.NotebookID)

	var upstream struct {
		Output notebook.Generated `json:"output"`
	}
	if err := json.Unmarshal(outcome.Body, &upstream); err != nil || upstream.Output.Title == "" {
		h.markFailed(ctx, req.NotebookID)
		gateway.WriteError(ctx, w, gateway.UpstreamInvalid("No title in response from web service"))
		return
	}

	gen := upstream.Output
	if gen.Icon == "" {
		gen.Icon = defaultIcon
	}
	if gen.Color == "" {
		gen.Color = defaultColor
	}
	if gen.ExampleQuestions == nil {
		gen.ExampleQuestions = []string{}
	}

	if err := h.notebooks.ApplyGenerated(ctx, req.NotebookID, gen); err != nil {
		slog.ErrorContext(ctx, "failed to persist generated metadata", "error", err, "notebook_id", req.NotebookID)
		h.markFailed(ctx, req.NotebookID)
		gateway.WriteError(ctx, w, err)
		return
	}

	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{
		"success":           true,
		"id":                req.NotebookID,
		"title":             gen.Title,
		"description":       gen.Description,
		"icon":              gen.Icon,
		"color":             gen.Color,
		"example_questions": gen.ExampleQuestions,
		"generation_status": notebook.StatusCompleted,
	})
}

func (h *Handler) markFailed(ctx context.Context, notebookID string) {
	gateway.BestEffort(ctx, "notebook failed status", func(ctx context.Context) error {
		return h.notebooks.UpdateGenerationStatus(ctx, notebookID, notebook.StatusFailed)
	})
}
