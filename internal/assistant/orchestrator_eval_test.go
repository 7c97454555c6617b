package assistant

import (
	"context"
	"os"
	"testing"
	"time"

	"calorina/internal/config"
	"calorina/internal/i18n"
	"calorina/internal/llm"
)

// TestTrainer_LiveEval performs a real completion to check that the trainer
// phase yields a decodable workout plan once equipment is known.
// Run with: go test -v ./internal/assistant -run TestTrainer_LiveEval
func TestTrainer_LiveEval(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live eval in short mode")
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("Skipping: GEMINI_API_KEY not set")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		t.Skipf("Skipping: %v", err)
	}

	o := NewOrchestrator(llm.NewGeminiClient(cfg), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	history := []Message{
		{Sender: SenderUser, Text: "I'd like a workout plan please."},
		{Sender: SenderAssistant, Text: "Welcome back! What kind of equipment do you have access to (e.g., full gym, dumbbells only, no equipment)?"},
		{Sender: SenderUser, Text: "Dumbbells only, three days a week."},
	}

	resp := o.GetResponse(ctx, history, i18n.English, true, false)
	if resp.Outcome == OutcomeServiceError {
		t.Fatalf("completion failed: %s", resp.Text)
	}

	// EVAL A: a plan must be extracted
	if resp.WorkoutPlan == nil {
		t.Fatalf("DECODE FAIL: no workout plan in reply %q", resp.Text)
	}

	// EVAL B: 3-5 days with exercises
	if n := len(resp.WorkoutPlan.Days); n < 3 || n > 5 {
		t.Errorf("SHAPE FAIL: expected 3-5 days, got %d", n)
	}
	for _, d := range resp.WorkoutPlan.Days {
		if len(d.Exercises) == 0 {
			t.Errorf("SHAPE FAIL: day %q has no exercises", d.Day)
		}
	}
	t.Logf("Message: %s", resp.Text)
	t.Logf("Tokens: %d", resp.Meta.Usage.TotalTokens)
}
