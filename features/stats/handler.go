package stats

import (
	"context"
	"log/slog"
	"net/http"

	"inkwell/backend/features/source"
	"inkwell/backend/internal/gateway"
)

type NotebookCounter interface {
	Count(ctx context.Context) (int, error)
}

type SourceCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

type Handler struct {
	notebooks NotebookCounter
	sources   SourceCounter
}

func NewHandler(notebooks NotebookCounter, sources SourceCounter) *Handler {
	return &Handler{notebooks: notebooks, sources: sources}
}

type StatsResponse struct {
	Notebooks     int `json:"notebooks"`
	Sources       int `json:"sources"`
	FailedSources int `json:"failed_sources"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nCount, err := h.notebooks.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count notebooks", "error", err)
		gateway.WriteError(ctx, w, err)
		return
	}

	sCount, err := h.sources.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count sources", "error", err)
		gateway.WriteError(ctx, w, err)
		return
	}

	fCount, err := h.sources.CountByStatus(ctx, source.StatusFailed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count failed sources", "error", err)
		gateway.WriteError(ctx, w, err)
		return
	}

	gateway.WriteJSON(ctx, w, http.StatusOK, map[string]any{
		"data": StatsResponse{
			Notebooks:     nCount,
			Sources:       sCount,
			FailedSources: fCount,
		},
	})
}
