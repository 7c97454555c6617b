package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"calorina/internal/auth"
	"calorina/internal/config"
	"calorina/internal/health"
	"calorina/internal/i18n"
	"calorina/internal/metrics"
	"calorina/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Telegram API the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UsageReporter reports recent completion usage for /metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot connects Telegram chats to assistant sessions.
type Bot struct {
	api      Sender
	sessions *session.Manager
	usage    UsageReporter
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewBot initializes the Telegram API and sets the webhook.
func NewBot(cfg *config.Config, sessions *session.Manager, usage UsageReporter, logger *slog.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	b := newBot(api, cfg, sessions, usage, logger)
	b.logger.Info("telegram authorized", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", "description", resp.Description)
	return b, nil
}

func newBot(api Sender, cfg *config.Config, sessions *session.Manager, usage UsageReporter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, sessions: sessions, usage: usage, cfg: cfg, logger: logger, now: time.Now}
}

// RegisterHandlers registers the webhook and health endpoints on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath), b.sessions.Count()))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.allowed(msg.From.ID) {
		b.logger.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	go b.processMessage(context.Background(), msg)
}

// allowed reports whether userID may use the bot. An empty allow list admits
// everyone.
func (b *Bot) allowed(userID int64) bool {
	return len(b.cfg.TelegramAllowedUserIDs) == 0 || slices.Contains(b.cfg.TelegramAllowedUserIDs, userID)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	id := b.attach(msg.From)
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, id, msg)
	} else if strings.TrimSpace(msg.Text) != "" {
		b.handleChat(ctx, id, chatID, msg.Text)
	}
	b.flushNotifications(id, chatID)
}

func (b *Bot) attach(from *tgbotapi.User) string {
	lang := i18n.Negotiate(from.LanguageCode, i18n.Language(b.cfg.DefaultLanguage))
	user := auth.User{
		Name:    strings.TrimSpace(from.FirstName + " " + from.LastName),
		IsAdmin: b.cfg.AdminTelegramID != 0 && from.ID == b.cfg.AdminTelegramID,
	}
	return b.sessions.Attach(fmt.Sprintf("telegram:%d", from.ID), user, lang)
}

func (b *Bot) handleCommand(ctx context.Context, id string, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		turn, err := b.sessions.Start(ctx, id)
		switch {
		case err != nil:
			b.sendError(chatID, err)
		case turn.Reply.Text == "":
			b.sendMarkdown(chatID, helpText)
		default:
			b.sendPlain(chatID, turn.Reply.Text)
		}
	case "help":
		b.sendMarkdown(chatID, helpText)
	case "plan":
		view, err := b.sessions.Snapshot(id)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		if view.DietPlan == nil {
			b.sendMarkdown(chatID, "🥗 No diet plan yet. Chat with me or send /profile to create one.")
			return
		}
		b.sendMarkdown(chatID, formatDietPlanMarkdown(view.DietPlan, b.now()))
	case "workout":
		view, err := b.sessions.Snapshot(id)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		if view.WorkoutPlan == nil {
			b.sendMarkdown(chatID, "🏋️ No workout plan yet. It comes after your diet plan.")
			return
		}
		b.sendMarkdown(chatID, formatWorkoutMarkdown(view.WorkoutPlan))
	case "profile":
		b.handleProfile(ctx, id, chatID, msg.CommandArguments())
	case "stats":
		stats, err := b.sessions.Statistics(id)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMarkdown(chatID, formatStatsMarkdown(stats))
	case "lang":
		lang, err := i18n.Parse(msg.CommandArguments())
		if err != nil {
			b.sendPlain(chatID, "Usage: /lang en|ar")
			return
		}
		if err := b.sessions.SetLanguage(id, lang); err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendPlain(chatID, "✅ Language set to "+string(lang))
	case "reset":
		if err := b.sessions.Reset(id); err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendPlain(chatID, "🔄 Conversation cleared. Send /start to begin again.")
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.sendMarkdown(chatID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetricsCommand(ctx, chatID)
	default:
		b.sendMarkdown(chatID, helpText)
	}
}

// handleProfile reads "/profile <gender> <age> <weight> <height> <activity>".
func (b *Bot) handleProfile(ctx context.Context, id string, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 5 {
		b.sendMarkdown(chatID, profileUsage)
		return
	}
	profile := health.Profile{
		Gender:        health.Gender(strings.ToLower(fields[0])),
		Age:           fields[1],
		Weight:        fields[2],
		Height:        fields[3],
		ActivityLevel: health.ActivityLevel(fields[4]),
	}
	plan, err := b.sessions.SubmitQuestionnaire(ctx, id, profile)
	if err != nil {
		var verr *health.ValidationError
		if errors.As(err, &verr) {
			b.sendPlain(chatID, "❌ "+verr.Error())
			return
		}
		b.sendError(chatID, err)
		return
	}
	b.sendMarkdown(chatID, formatDietPlanMarkdown(plan, b.now()))
}

func (b *Bot) handleChat(ctx context.Context, id string, chatID int64, text string) {
	status := tgbotapi.NewMessage(chatID, "💬 *Thinking...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		b.logger.Error("failed to send initial reply", "chat_id", chatID, "error", err)
		return
	}

	turn, err := b.sessions.SendMessage(ctx, id, text)
	if err != nil {
		if errors.Is(err, session.ErrTurnInProgress) {
			b.edit(chatID, sent.MessageID, "⏳ Still working on your previous message.")
			return
		}
		b.logger.Error("chat turn failed", "session", id, "error", err)
		b.edit(chatID, sent.MessageID, "❌ Something went wrong. Please try again.")
		return
	}

	b.edit(chatID, sent.MessageID, turn.Reply.Text)
	if turn.DietPlan != nil {
		b.sendMarkdown(chatID, formatDietPlanMarkdown(turn.DietPlan, b.now()))
	}
	if turn.WorkoutPlan != nil {
		b.sendMarkdown(chatID, formatWorkoutMarkdown(turn.WorkoutPlan))
	}
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	var usage []metrics.DailyUsage
	if b.usage != nil {
		var err error
		usage, err = b.usage.GetDailyUsage(ctx, 7)
		if err != nil {
			b.logger.Error("failed to fetch usage", "error", err)
			b.sendPlain(chatID, "❌ Error fetching metrics.")
			return
		}
	}
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath), b.sessions.Count())
	b.sendMarkdown(chatID, formatUsageReport(usage, health))
}

func (b *Bot) flushNotifications(id string, chatID int64) {
	notes, err := b.sessions.Notifications(id)
	if err != nil {
		return
	}
	for _, n := range notes {
		b.sendPlain(chatID, notificationIcon(n.Type)+" "+n.Message)
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Warn("failed to edit message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendError(chatID int64, err error) {
	if errors.Is(err, session.ErrNoDietPlan) {
		b.sendMarkdown(chatID, "🥗 No diet plan yet. Send /profile to create one.")
		return
	}
	b.logger.Error("command failed", "chat_id", chatID, "error", err)
	b.sendPlain(chatID, "❌ Something went wrong. Please try again.")
}
