package telegram

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"calorina/internal/assistant"
	"calorina/internal/config"
	"calorina/internal/diet"
	"calorina/internal/health"
	"calorina/internal/i18n"
	"calorina/internal/llm/llmtest"
	"calorina/internal/metrics"
	"calorina/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every message and edit, in order.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeUsage struct{ days []metrics.DailyUsage }

func (f fakeUsage) GetDailyUsage(context.Context, int) ([]metrics.DailyUsage, error) {
	return f.days, nil
}

func newTestBot(t *testing.T, replies ...string) (*Bot, *fakeSender, *llmtest.MockCompleter) {
	t.Helper()
	mock := &llmtest.MockCompleter{Responses: replies}
	synth, err := diet.NewSynthesizer(diet.DefaultBank())
	require.NoError(t, err)

	cfg := &config.Config{
		DefaultLanguage:        "en",
		DatabasePath:           t.TempDir() + "/calorina.db",
		TelegramAllowedUserIDs: []int64{7, 99},
		AdminTelegramID:        99,
	}
	sender := &fakeSender{}
	sessions := session.NewManager(assistant.NewOrchestrator(mock, nil), synth, session.Options{})
	b := newBot(sender, cfg, sessions, fakeUsage{days: []metrics.DailyUsage{{Date: "2024-05-15", TotalPrompt: 100, TotalCompletion: 50, TotalExecution: 3}}}, nil)
	b.now = func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) }
	return b, sender, mock
}

func message(userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Sam", LanguageCode: "en"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func TestAllowed(t *testing.T) {
	b, _, _ := newTestBot(t)
	assert.True(t, b.allowed(7))
	assert.False(t, b.allowed(8))

	b.cfg.TelegramAllowedUserIDs = nil
	assert.True(t, b.allowed(8))
}

func TestHandleWebhook_IgnoresStrangers(t *testing.T) {
	b, sender, _ := newTestBot(t, "hi")

	body := `{"update_id":1,"message":{"message_id":1,"from":{"id":8,"first_name":"Eve"},"chat":{"id":8,"type":"private"},"text":"hello"}}`
	rec := httptest.NewRecorder()
	b.handleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, b.sessions.Count())
	assert.Empty(t, sender.texts())

	rec = httptest.NewRecorder()
	b.handleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessMessage_Chat(t *testing.T) {
	b, sender, mock := newTestBot(t, "Welcome! What is your goal?", "How old are you?")
	ctx := context.Background()

	b.processMessage(ctx, message(7, "/start"))
	b.processMessage(ctx, message(7, "Lose weight"))

	texts := sender.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "Welcome! What is your goal?", texts[0])
	assert.Equal(t, "💬 *Thinking...*", texts[1])
	assert.Equal(t, "How old are you?", texts[2])
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, 1, b.sessions.Count())
}

func TestProcessMessage_ProfileAndPlan(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.processMessage(ctx, message(7, "/plan"))
	b.processMessage(ctx, message(7, "/profile male 25"))
	b.processMessage(ctx, message(7, "/profile male 25 70 175 flying"))
	b.processMessage(ctx, message(7, "/profile male 25 70 175 sedentary"))

	texts := sender.texts()
	require.Len(t, texts, 5)
	assert.Contains(t, texts[0], "No diet plan yet")
	assert.Contains(t, texts[1], "Usage:")
	assert.Contains(t, texts[2], "invalid activityLevel")
	assert.Contains(t, texts[3], "*Daily target:* 2009 kcal")
	assert.Contains(t, texts[3], "2024-05-15")
	assert.Equal(t, "✅ "+i18n.T(i18n.English, i18n.NotifyProfileUpdated), texts[4])
}

func TestProcessMessage_WorkoutFromChat(t *testing.T) {
	reply := "Here it is\n```json\n" +
		`{"notes":"Stretch","days":[{"day":"Monday","focus":"Push","exercises":[{"name":"Bench_Press","sets":"4","reps":"8","description":"Controlled"}]}]}` +
		"\n```"
	b, sender, _ := newTestBot(t, reply)
	ctx := context.Background()

	b.processMessage(ctx, message(7, "/profile female 30 60 165 light"))
	b.processMessage(ctx, message(7, "Gym three times a week"))
	b.processMessage(ctx, message(7, "/workout"))

	texts := sender.texts()
	require.Len(t, texts, 7)
	assert.Equal(t, "Here it is", texts[3])
	assert.Contains(t, texts[4], "🏋️ *Your Workout Plan*")
	assert.Contains(t, texts[4], `Bench\_Press: 4 x 8`)
	assert.Equal(t, "✅ "+i18n.T(i18n.English, i18n.NotifyWorkoutPlanReady), texts[5])
	assert.Equal(t, texts[4], texts[6])
}

func TestProcessMessage_AdminMetrics(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.processMessage(ctx, message(7, "/metrics"))
	b.processMessage(ctx, message(99, "/metrics"))

	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Access Denied")
	assert.Contains(t, texts[1], "*2024-05-15*: 150 tokens (3 execs")
	assert.Contains(t, texts[1], "Sessions: 2")
}

func TestProcessMessage_LangAndReset(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.processMessage(ctx, message(7, "/lang ar"))
	b.processMessage(ctx, message(7, "/lang xx"))
	b.processMessage(ctx, message(7, "/reset"))
	b.processMessage(ctx, message(7, "/unknown"))

	texts := sender.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "✅ Language set to ar", texts[0])
	assert.Equal(t, "Usage: /lang en|ar", texts[1])
	assert.Contains(t, texts[2], "Conversation cleared")
	assert.Equal(t, helpText, texts[3])
}

func TestFormatDietPlanMarkdown(t *testing.T) {
	synth, err := diet.NewSynthesizer(diet.DefaultBank())
	require.NoError(t, err)
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	plan, err := synth.Generate(health.Profile{
		Gender: health.Male, Age: "25", Weight: "70", Height: "175", ActivityLevel: health.Sedentary,
	}, i18n.English, day)
	require.NoError(t, err)

	out := formatDietPlanMarkdown(plan, day)
	assert.Contains(t, out, "📋 *Your Diet Plan*")
	assert.Contains(t, out, "Protein 151g • Carbs 201g • Fat 67g")
	assert.Contains(t, out, "*🍳 Breakfast*")
	for _, m := range plan.MealsFor("2024-05-15").Items() {
		assert.Contains(t, out, m.Name)
	}
	assert.Contains(t, out, "*Total:*")
}

func TestFormatStatsMarkdown(t *testing.T) {
	out := formatStatsMarkdown(session.Stats{
		Days: []session.DayStats{
			{Date: "2024-05-14", DietAdherence: 50, TotalMeals: 4},
			{Date: "2024-05-15", DietAdherence: 100, WorkoutAdherence: 50, TotalExercises: 2},
		},
		OverallAdherence:       50,
		TotalCompletedMeals:    6,
		TotalScheduledMeals:    8,
		TotalCompletedWorkouts: 1,
		TotalScheduledWorkouts: 2,
	})
	assert.Contains(t, out, "*Overall adherence:* 50%")
	assert.Contains(t, out, "*Exercises:* 1/2")
	assert.Contains(t, out, "• 2024-05-14: 🥗 50%\n")
	assert.True(t, strings.HasSuffix(out, "• 2024-05-15: 🥗 100% 🏋️ 50%"))
}
