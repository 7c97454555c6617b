package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"calorina/internal/shared"
)

const timestampLayout = "2006-01-02 15:04:05"

// ExecutionMetric records metadata for a single assistant turn.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	Outcome          string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// DietPlanEvent records the synthesis of a diet plan.
type DietPlanEvent struct {
	Source             string // "chat" or "questionnaire"
	Language           string
	DailyCaloricIntake int
	Timestamp          time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics
			(agent_name, model, outcome, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.AgentName, m.Model, m.Outcome, m.PromptTokens, m.CompletionTokens, m.LatencyMS,
		ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.AgentMeta. Turns that used
// no tokens (failed before reaching the provider) are still counted.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta, outcome string) error {
	m := MapUsage(meta.AgentName, meta.Usage, meta.Latency)
	m.Outcome = outcome
	return s.Record(ctx, m)
}

// RecordDietPlan saves a diet plan synthesis event.
func (s *Store) RecordDietPlan(ctx context.Context, e DietPlanEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diet_plan_events (source, language, daily_caloric_intake, timestamp)
		VALUES (?, ?, ?, ?)`,
		e.Source, e.Language, e.DailyCaloricIntake, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert diet plan event: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	ServiceErrors   int
	AvgLatencyMS    int64
	DietPlans       int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timestampLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(CASE WHEN outcome = 'service_error' THEN 1 ELSE 0 END), 0),
		       CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	byDay := map[string]int{}
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalExecution, &u.TotalPrompt, &u.TotalCompletion, &u.ServiceErrors, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("scan daily usage: %w", err)
		}
		byDay[u.Date] = len(results)
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	planRows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, COUNT(*)
		FROM diet_plan_events
		WHERE timestamp >= ?
		GROUP BY day`, since)
	if err != nil {
		return nil, fmt.Errorf("query diet plan events: %w", err)
	}
	defer planRows.Close()

	for planRows.Next() {
		var day string
		var n int
		if err := planRows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scan diet plan events: %w", err)
		}
		i, ok := byDay[day]
		if !ok {
			i = len(results)
			byDay[day] = i
			results = append(results, DailyUsage{Date: day})
		}
		results[i].DietPlans = n
	}
	if err := planRows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b DailyUsage) int { return strings.Compare(b.Date, a.Date) })
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many rows were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)

	var total int64
	for _, table := range []string{"execution_metrics", "diet_plan_events"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE timestamp < ?`, threshold)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// MapUsage helper to convert shared.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
