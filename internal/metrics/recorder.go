package metrics

import (
	"context"
	"log/slog"
	"time"

	"calorina/internal/shared"
)

// Recorder fans assistant telemetry out to the SQLite store and the
// Prometheus collectors. Either may be nil. Persistence failures are logged
// and never surface to the caller.
type Recorder struct {
	store  *Store
	prom   *Collectors
	logger *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store *Store, prom *Collectors, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, prom: prom, logger: logger}
}

// Turn records one assistant turn.
func (r *Recorder) Turn(ctx context.Context, meta shared.AgentMeta, outcome string) {
	if r.prom != nil {
		r.prom.ObserveTurn(meta, outcome)
	}
	if r.store != nil {
		if err := r.store.RecordMeta(ctx, meta, outcome); err != nil {
			r.logger.Warn("failed to record turn metric", "agent", meta.AgentName, "error", err)
		}
	}
}

// DietPlan records a synthesized diet plan.
func (r *Recorder) DietPlan(ctx context.Context, source, lang string, kcal int) {
	if r.prom != nil {
		r.prom.ObserveDietPlan(source)
	}
	if r.store != nil {
		err := r.store.RecordDietPlan(ctx, DietPlanEvent{
			Source:             source,
			Language:           lang,
			DailyCaloricIntake: kcal,
			Timestamp:          time.Now(),
		})
		if err != nil {
			r.logger.Warn("failed to record diet plan event", "source", source, "error", err)
		}
	}
}
