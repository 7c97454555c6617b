package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"calorina/internal/assistant"
	"calorina/internal/auth"
	"calorina/internal/catalog"
	"calorina/internal/database"
	"calorina/internal/diet"
	"calorina/internal/httpapi"
	"calorina/internal/i18n"
	"calorina/internal/llm"
	"calorina/internal/llm/llmtest"
	"calorina/internal/metrics"
	"calorina/internal/session"
	"calorina/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workoutReply = "Here you go.\n```json\n" +
	`{"notes":"Rest on Friday.","days":[{"day":"Day 1","focus":"Full Body","exercises":[{"name":"Push-ups","sets":"3","reps":"10","description":"Keep a straight back."}]}]}` +
	"\n```"

// scriptedModel answers by the last user message, like a cooperative model
// would in each phase.
func scriptedModel(_ context.Context, req llm.Request) (llm.ContentResponse, error) {
	usage := shared.TokenUsage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30, Model: "scripted"}
	last := req.History[len(req.History)-1].Text
	switch last {
	case "I am ready":
		return llm.ContentResponse{Content: assistant.PlanReady, Usage: usage}, nil
	case "Bodyweight only":
		return llm.ContentResponse{Content: workoutReply, Usage: usage}, nil
	case "Can I eat dates?":
		return llm.ContentResponse{Content: "Yes, in moderation.", Usage: usage}, nil
	}
	return llm.ContentResponse{Content: "Hello! What is your goal?", Usage: usage}, nil
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "ar-JO,ar;q=0.9")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestConversationWorkflow(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "calorina.db"))
	require.NoError(t, err)
	defer db.Close()
	store := metrics.NewStore(db.SQL)
	prom := metrics.NewCollectors()

	synth, err := diet.NewSynthesizer(diet.DefaultBank())
	require.NoError(t, err)
	mock := &llmtest.MockCompleter{Hook: scriptedModel}
	sessions := session.NewManager(assistant.NewOrchestrator(mock, nil), synth, session.Options{
		HistoryLimit: 10,
		Timeout:      5 * time.Second,
		Telemetry:    metrics.NewRecorder(store, prom, nil),
	})

	api := httpapi.NewServer(httpapi.Deps{
		Sessions: sessions,
		Users:    auth.NewDirectory(auth.DefaultUsers),
		Tokens:   auth.NewIssuer([]byte("acceptance"), time.Hour),
		Catalog:  catalog.New(catalog.DefaultSeed()),
		Metrics:  prom.Handler(),
		DataDir:  t.TempDir(),
	})
	srv := httptest.NewServer(api.Handler())
	defer srv.Close()

	c := &client{t: t, base: srv.URL}

	// 1. Sign up; the browser language picks Arabic.
	var signed struct {
		Token   string       `json:"token"`
		Session session.View `json:"session"`
	}
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Lina", "email": "lina@example.com", "countryCode": "+962", "phone": "791112223",
	}, &signed))
	c.token = signed.Token
	assert.Equal(t, i18n.Arabic, signed.Session.Language)

	// 2. The nutritionist greets and hands off without a questionnaire.
	var turn session.Turn
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/chat/start", nil, &turn))
	assert.Equal(t, "nutritionist", turn.Phase)

	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/chat", map[string]string{"text": "I am ready"}, &turn))
	assert.Equal(t, i18n.T(i18n.Arabic, i18n.QuestionnaireRequired), turn.Reply.Text)
	assert.Nil(t, turn.DietPlan)

	// 3. The questionnaire produces the diet plan.
	var plan diet.DietPlan
	require.Equal(t, http.StatusOK, c.call(http.MethodPut, "/api/profile", map[string]string{
		"gender": "female", "age": "28", "weight": "60", "height": "165", "activityLevel": "moderate",
	}, &plan))
	// BMR 10*60 + 6.25*165 - 5*28 - 161 = 1330.25, times 1.55.
	assert.Equal(t, 2062, plan.DailyCaloricIntake)
	assert.Len(t, plan.Schedule, 21)

	// 4. The trainer turns the equipment answer into a workout plan.
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/chat", map[string]string{"text": "Bodyweight only"}, &turn))
	assert.Equal(t, "trainer", turn.Phase)
	require.NotNil(t, turn.WorkoutPlan)
	assert.Equal(t, "Push-ups", turn.WorkoutPlan.Days[0].Exercises[0].Name)

	// 5. The consultant answers follow-ups.
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/chat", map[string]string{"text": "Can I eat dates?"}, &turn))
	assert.Equal(t, "consultant", turn.Phase)
	assert.Equal(t, "Yes, in moderation.", turn.Reply.Text)

	// 6. Reset keeps the questionnaire, so the nutritionist can rebuild the plan.
	require.Equal(t, http.StatusNoContent, c.call(http.MethodPost, "/api/session/reset", nil, nil))
	var view session.View
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/session", nil, &view))
	assert.Nil(t, view.DietPlan)
	assert.Nil(t, view.WorkoutPlan)
	require.NotNil(t, view.Profile)
	assert.Empty(t, view.Conversation)

	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/chat", map[string]string{"text": "I am ready"}, &turn))
	assert.Equal(t, i18n.T(i18n.Arabic, i18n.DietPlanCreated), turn.Reply.Text)
	require.NotNil(t, turn.DietPlan)
	assert.Equal(t, 2062, turn.DietPlan.DailyCaloricIntake)

	// 7. Every turn and both plans reached the telemetry store.
	usage, err := store.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 5, usage[0].TotalExecution)
	assert.Equal(t, 100, usage[0].TotalPrompt)
	assert.Equal(t, 2, usage[0].DietPlans)
	assert.Equal(t, 0, usage[0].ServiceErrors)
}
