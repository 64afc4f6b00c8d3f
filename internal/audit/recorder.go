package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wI2L/jsondiff"

	"github.com/philipcowcer-eng/LoadBalance/internal/metrics"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

// Entry describes one audited action.
type Entry struct {
	Action       string
	ResourceType string
	ResourceID   string
	// Details is serialized as-is into the details column.
	Details map[string]any
	// Before and After, when both set, add a JSON Patch of the change under
	// details["patch"].
	Before any
	After  any
}

// Recorder appends audit log entries. Writes are best-effort: a failure is
// logged and counted but never returned to the caller.
type Recorder struct {
	repo     repository.AuditLogRepo
	logger   *slog.Logger
	failures prometheus.Counter
}

func NewRecorder(repo repository.AuditLogRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:     repo,
		logger:   logger,
		failures: metrics.AuditWriteFailures.WithLabelValues("audit"),
	}
}

// Record writes the entry attributed to the actor in ctx, or to "system".
func (r *Recorder) Record(ctx context.Context, e Entry) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(e, "panic", p)
		}
	}()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor.UserID, actor.Username = SystemActor, SystemActor
	}

	row := &models.AuditLogEntry{
		UserID:       actor.UserID,
		Username:     actor.Username,
		Action:       e.Action,
		ResourceType: e.ResourceType,
	}
	if e.ResourceID != "" {
		row.ResourceID = &e.ResourceID
	}
	if actor.IP != "" {
		ip := actor.IP
		row.IPAddress = &ip
	}

	details := e.Details
	if e.Before != nil && e.After != nil {
		patch, err := jsondiff.Compare(e.Before, e.After)
		if err != nil {
			r.logger.Warn("audit diff failed", "resource_type", e.ResourceType, "error", err)
		} else if len(patch) > 0 {
			if details == nil {
				details = map[string]any{}
			}
			details["patch"] = patch
		}
	}
	if details != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(details); err != nil {
			r.fail(e, "marshal details", err)
			return
		}
		s := strings.TrimSuffix(buf.String(), "\n")
		row.Details = &s
	}

	if err := r.repo.AppendAudit(ctx, row); err != nil {
		r.fail(e, "append", err)
	}
}

func (r *Recorder) fail(e Entry, stage string, err any) {
	r.failures.Inc()
	r.logger.Error("audit write failed",
		"stage", stage,
		"action", e.Action,
		"resource_type", e.ResourceType,
		"resource_id", e.ResourceID,
		"error", err,
	)
}
