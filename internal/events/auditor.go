// Package events publishes an audit trail of dispatch outcomes to NSQ.
// Publishing is fire-and-forget: the caller's response never depends on it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"inkwell/backend/internal/config"
	"inkwell/backend/internal/middleware"
)

type Publisher interface {
	Publish(topic string, body []byte) error
}

type Auditor struct {
	pub Publisher
}

func NewAuditor(pub Publisher) *Auditor {
	return &Auditor{pub: pub}
}

func (a *Auditor) JobDispatched(ctx context.Context, kind, resourceID string) {
	a.publish(ctx, config.TopicJobDispatched, kind, resourceID, "")
}

func (a *Auditor) JobFailed(ctx context.Context, kind, resourceID, reason string) {
	a.publish(ctx, config.TopicJobFailed, kind, resourceID, reason)
}

func (a *Auditor) publish(ctx context.Context, topic, kind, resourceID, reason string) {
	if a.pub == nil {
		return
	}

	body, _ := json.Marshal(map[string]any{
		"kind":           kind,
		"resource_id":    resourceID,
		"reason":         reason,
		"at":             time.Now().UTC().Format(time.RFC3339),
		"correlation_id": middleware.GetCorrelationID(ctx),
	})

	if err := a.pub.Publish(topic, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish audit event", "topic", topic, "kind", kind, "error", err)
		return
	}
	slog.InfoContext(ctx, "published audit event", "topic", topic, "kind", kind, "resource_id", resourceID)
}
