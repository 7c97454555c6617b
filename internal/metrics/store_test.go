package metrics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"calorina/internal/database"
	"calorina/internal/shared"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	s := NewStore(db.SQL)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_DailyUsage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "nutritionist", Model: "m", Outcome: "reply", PromptTokens: 100, CompletionTokens: 20, LatencyMS: 300, Timestamp: now}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "trainer", Model: "m", Outcome: "service_error", LatencyMS: 100, Timestamp: now}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "trainer", Model: "m", PromptTokens: 7, Timestamp: now.AddDate(0, 0, -1)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "old", Timestamp: now.AddDate(0, 0, -30)}))
	require.NoError(t, s.RecordDietPlan(ctx, DietPlanEvent{Source: "chat", Language: "en", DailyCaloricIntake: 2009, Timestamp: now}))

	usage, err := s.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	today := usage[0]
	assert.Equal(t, now.Format("2006-01-02"), today.Date)
	assert.Equal(t, 2, today.TotalExecution)
	assert.Equal(t, 100, today.TotalPrompt)
	assert.Equal(t, 20, today.TotalCompletion)
	assert.Equal(t, 1, today.ServiceErrors)
	assert.Equal(t, int64(200), today.AvgLatencyMS)
	assert.Equal(t, 1, today.DietPlans)

	assert.Equal(t, 7, usage[1].TotalPrompt)
	assert.Equal(t, 0, usage[1].DietPlans)
}

func TestStore_DailyUsage_PlansWithoutTurns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "nutritionist", PromptTokens: 5, Timestamp: now}))
	require.NoError(t, s.RecordDietPlan(ctx, DietPlanEvent{Source: "questionnaire", Language: "ar", DailyCaloricIntake: 1800, Timestamp: now.AddDate(0, 0, -2)}))
	require.NoError(t, s.RecordDietPlan(ctx, DietPlanEvent{Source: "questionnaire", Language: "en", DailyCaloricIntake: 2100, Timestamp: now.AddDate(0, 0, -2)}))

	usage, err := s.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, now.Format("2006-01-02"), usage[0].Date)
	assert.Equal(t, 0, usage[0].DietPlans)

	assert.Equal(t, now.AddDate(0, 0, -2).Format("2006-01-02"), usage[1].Date)
	assert.Equal(t, 2, usage[1].DietPlans)
	assert.Zero(t, usage[1].TotalExecution)
}

func TestStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "a", Timestamp: now.AddDate(0, 0, -40)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "b", Timestamp: now}))
	require.NoError(t, s.RecordDietPlan(ctx, DietPlanEvent{Source: "chat", Language: "en", Timestamp: now.AddDate(0, 0, -40)}))

	n, err := s.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	usage, err := s.GetDailyUsage(ctx, 90)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 1, usage[0].TotalExecution)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	prom := NewCollectors()
	r := NewRecorder(s, prom, nil)

	meta := shared.AgentMeta{
		AgentName: "trainer",
		Usage:     shared.TokenUsage{PromptTokens: 40, CompletionTokens: 60, TotalTokens: 100, Model: "gemini-2.5-flash"},
		Latency:   1500 * time.Millisecond,
	}
	r.Turn(ctx, meta, "workout_plan")
	r.Turn(ctx, shared.AgentMeta{AgentName: "trainer"}, "service_error")
	r.DietPlan(ctx, "questionnaire", "ar", 1809)

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.turns.WithLabelValues("trainer", "workout_plan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.turns.WithLabelValues("trainer", "service_error")))
	assert.Equal(t, 60.0, testutil.ToFloat64(prom.tokens.WithLabelValues("gemini-2.5-flash", "completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.dietPlans.WithLabelValues("questionnaire")))

	usage, err := s.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].TotalExecution)
	assert.Equal(t, 1, usage[0].DietPlans)

	// Nil sinks are tolerated.
	NewRecorder(nil, nil, nil).Turn(ctx, meta, "reply")
}

func TestCollectorsHandler(t *testing.T) {
	prom := NewCollectors()
	prom.ObserveDietPlan("chat")

	expected := `
# HELP calorina_diet_plans_generated_total Diet plans synthesized by source.
# TYPE calorina_diet_plans_generated_total counter
calorina_diet_plans_generated_total{source="chat"} 1
`
	require.NoError(t, testutil.GatherAndCompare(prom.Registry(), strings.NewReader(expected), "calorina_diet_plans_generated_total"))
	assert.NotNil(t, prom.Handler())
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	h := GetSysHealth(dir, 3)
	assert.Equal(t, 3, h.ActiveSessions)
	assert.Equal(t, "0 B", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
}
