package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"calorina/internal/i18n"
	"calorina/internal/llm"
	"calorina/internal/shared"
)

// Sender identifies who wrote a conversation message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Outcome classifies how a turn ended.
type Outcome string

const (
	OutcomeReply          Outcome = "reply"
	OutcomePlanReady      Outcome = "plan_ready"
	OutcomeWorkoutPlan    Outcome = "workout_plan"
	OutcomeDecodeFallback Outcome = "decode_fallback"
	OutcomeServiceError   Outcome = "service_error"
)

// Response is the result of one assistant turn. Text is never empty.
// WorkoutPlan is set only by a trainer turn whose reply carried a plan.
type Response struct {
	Text        string
	WorkoutPlan *WorkoutPlan
	Phase       Phase
	Outcome     Outcome
	Meta        shared.AgentMeta
}

// Orchestrator picks the phase, instructs the completion service and decodes
// its reply. It keeps no state between calls.
type Orchestrator struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger uses slog.Default().
func NewOrchestrator(completer llm.Completer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{completer: completer, logger: logger}
}

// GetResponse produces the assistant's reply to the conversation. Completion
// failures are logged and turned into the localized apology; no error is
// returned.
func (o *Orchestrator) GetResponse(
	ctx context.Context,
	history []Message,
	lang i18n.Language,
	hasDietPlan bool,
	hasWorkoutPlan bool,
) Response {
	start := time.Now()
	phase := SelectPhase(hasDietPlan, hasWorkoutPlan)

	req := llm.Request{
		Instruction: Instruction(phase, lang),
		History:     toLLMHistory(history, lang),
	}
	if phase == Trainer {
		req.ResponseSchema = WorkoutPlanSchema
	}

	resp, err := o.completer.Complete(ctx, req)
	meta := shared.AgentMeta{
		AgentName: phase.String(),
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	raw := strings.TrimSpace(resp.Content)
	if err == nil && raw == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		o.logger.Error("completion failed",
			"phase", phase.String(),
			"lang", string(lang),
			"error", err,
		)
		return Response{
			Text:    i18n.T(lang, i18n.ServiceUnavailable),
			Phase:   phase,
			Outcome: OutcomeServiceError,
			Meta:    meta,
		}
	}

	out := Response{Text: raw, Phase: phase, Outcome: OutcomeReply, Meta: meta}
	switch phase {
	case Nutritionist:
		if raw == PlanReady {
			out.Outcome = OutcomePlanReady
		}
	case Trainer:
		reply, derr := DecodeWorkoutReply(raw, lang)
		switch r := reply.(type) {
		case MessageWithPlan:
			plan := r.Plan
			out.Text = r.Text
			out.WorkoutPlan = &plan
			out.Outcome = OutcomeWorkoutPlan
		case PlainMessage:
			out.Text = r.Text
			if derr != nil {
				o.logger.Warn("workout plan decode failed",
					"lang", string(lang),
					"fenced", derr.Fenced,
					"error", derr.Err,
				)
				out.Outcome = OutcomeDecodeFallback
			}
		}
	}
	return out
}

// toLLMHistory maps the conversation to completion messages. An empty
// conversation is replaced by the localized greeting prompt.
func toLLMHistory(history []Message, lang i18n.Language) []llm.Message {
	if len(history) == 0 {
		return []llm.Message{{Role: llm.RoleUser, Text: i18n.T(lang, i18n.GreetingPrompt)}}
	}
	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		role := llm.RoleUser
		if m.Sender == SenderAssistant {
			role = llm.RoleAssistant
		}
		msgs[i] = llm.Message{Role: role, Text: m.Text}
	}
	return msgs
}

// Recent returns at most limit of the latest messages, dropping leading
// assistant messages so the window starts with a user turn. A limit of zero
// or less returns the whole history.
func Recent(history []Message, limit int) []Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	window := history[len(history)-limit:]
	for len(window) > 1 && window[0].Sender == SenderAssistant {
		window = window[1:]
	}
	return window
}
