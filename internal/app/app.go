package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/backend/features/chat"
	"inkwell/backend/features/document"
	"inkwell/backend/features/generation"
	"inkwell/backend/features/ingest"
	"inkwell/backend/features/notebook"
	"inkwell/backend/features/source"
	"inkwell/backend/features/stats"
	"inkwell/backend/internal/auth"
	"inkwell/backend/internal/config"
	"inkwell/backend/internal/events"
	"inkwell/backend/internal/gateway"
	"inkwell/backend/internal/metrics"
	"inkwell/backend/internal/middleware"
)

type App struct {
	Handler http.Handler
	port    int
}

func New(cfg *config.Config, db *sql.DB, pub events.Publisher) (*App, error) {
	notebookRepo := notebook.NewPostgresRepo(db)
	sourceRepo := source.NewPostgresRepo(db)

	verifier := auth.NewClient(cfg.ProjectURL, cfg.AuthAnonKey)
	dispatcher := gateway.NewDispatcher(cfg.WebhookSecret)
	auditor := events.NewAuditor(pub)

	httpMetrics := metrics.NewHTTPServerMetrics("backend")
	meter := func(kind string) *meteredDispatcher {
		return &meteredDispatcher{inner: dispatcher, metrics: httpMetrics, service: "backend", kind: kind}
	}

	documentHandler := document.NewHandler(verifier, sourceRepo, meter("document"), auditor, document.Config{
		ProjectURL: cfg.ProjectURL,
		WebhookURL: cfg.DocumentWebhookURL,
		Secret:     cfg.WebhookSecret,
	})
	callbackHandler := document.NewCallbackHandler(sourceRepo, cfg.WebhookSecret)
	ingestHandler := ingest.NewHandler(verifier, notebookRepo, sourceRepo, meter("ingestion"), auditor, ingest.Config{
		WebhookURL: cfg.SourcesWebhookURL,
		Secret:     cfg.WebhookSecret,
	})
	generationHandler := generation.NewHandler(verifier, notebookRepo, sourceRepo, meter("generation"), auditor, generation.Config{
		WebhookURL: cfg.GenerationWebhookURL,
		Secret:     cfg.WebhookSecret,
	})
	chatHandler := chat.NewHandler(verifier, meter("chat"), auditor, chat.Config{
		WebhookURL: cfg.ChatWebhookURL,
		Secret:     cfg.WebhookSecret,
	})
	statsHandler := stats.NewHandler(notebookRepo, sourceRepo)

	chain := func(h http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(middleware.CORS(h))
	}

	// Gateway routes take any method: OPTIONS is answered by the CORS
	// middleware, everything else falls through to the handler.
	mux := http.NewServeMux()
	mux.Handle("/functions/v1/process-document", chain(documentHandler.Process))
	mux.Handle("/functions/v1/process-document-callback", chain(callbackHandler.Handle))
	mux.Handle("/functions/v1/process-additional-sources", chain(ingestHandler.Ingest))
	mux.Handle("/functions/v1/generate-notebook-content", chain(generationHandler.Generate))
	mux.Handle("/functions/v1/send-chat-message", chain(chatHandler.Relay))

	mux.Handle("GET /stats", chain(statsHandler.GetStats))
	mux.Handle("GET /metrics", httpMetrics.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler: httpMetrics.Middleware("backend", mux),
		port:    cfg.ServerPort,
	}, nil
}

// meteredDispatcher counts every outbound dispatch on top of the shared
// Dispatcher. It satisfies each feature's Dispatcher interface.
type meteredDispatcher struct {
	inner   *gateway.Dispatcher
	metrics *metrics.HTTPServerMetrics
	service string
	kind    string
}

func (d *meteredDispatcher) Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error) {
	outcome, err := d.inner.Send(ctx, endpoint, payload)
	if err != nil {
		d.metrics.RecordDispatch(d.service, d.kind, "failure")
		return nil, err
	}
	d.metrics.RecordDispatch(d.service, d.kind, "success")
	return outcome, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
