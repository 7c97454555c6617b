package session

import (
	"context"
	"fmt"
	"strings"

	"calorina/internal/assistant"
	"calorina/internal/diet"
	"calorina/internal/health"
	"calorina/internal/i18n"
	"calorina/internal/shared"
)

// Turn is the visible result of one message exchange.
type Turn struct {
	Reply       assistant.Message      `json:"reply"`
	Phase       string                 `json:"phase"`
	Outcome     assistant.Outcome      `json:"outcome"`
	DietPlan    *diet.DietPlan         `json:"dietPlan,omitempty"`
	WorkoutPlan *assistant.WorkoutPlan `json:"workoutPlan,omitempty"`
}

// Start asks the assistant to open the conversation. It does nothing and
// returns a zero Turn when the conversation has already begun.
func (m *Manager) Start(ctx context.Context, id string) (Turn, error) {
	s, err := m.get(id)
	if err != nil {
		return Turn{}, err
	}
	if !s.turn.TryLock() {
		return Turn{}, ErrTurnInProgress
	}
	defer s.turn.Unlock()

	s.mu.Lock()
	started := len(s.history) > 0
	s.mu.Unlock()
	if started {
		return Turn{}, nil
	}
	return m.exchange(ctx, s)
}

// SendMessage appends the user's text to the conversation and returns the
// assistant's answer. Only one message per session is answered at a time.
func (m *Manager) SendMessage(ctx context.Context, id, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, fmt.Errorf("%w: message is empty", shared.ErrInvalidInput)
	}

	s, err := m.get(id)
	if err != nil {
		return Turn{}, err
	}
	if !s.turn.TryLock() {
		return Turn{}, ErrTurnInProgress
	}
	defer s.turn.Unlock()

	s.mu.Lock()
	s.history = append(s.history, assistant.Message{Sender: assistant.SenderUser, Text: text})
	s.mu.Unlock()

	return m.exchange(ctx, s)
}

// exchange runs one assistant call over the current conversation and applies
// its outcome. The caller holds s.turn.
func (m *Manager) exchange(ctx context.Context, s *Session) (Turn, error) {
	s.mu.Lock()
	history := append([]assistant.Message(nil), assistant.Recent(s.history, m.opts.HistoryLimit)...)
	lang := s.lang
	hasDiet, hasWorkout := s.dietPlan != nil, s.workoutPlan != nil
	s.mu.Unlock()

	// Telemetry must land even when the completion ran out of time.
	recordCtx := context.WithoutCancel(ctx)
	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}

	resp := m.responder.GetResponse(ctx, history, lang, hasDiet, hasWorkout)
	m.opts.Telemetry.Turn(recordCtx, resp.Meta, string(resp.Outcome))

	reply := resp.Text
	var plan *diet.DietPlan
	if resp.Outcome == assistant.OutcomePlanReady {
		s.mu.Lock()
		profile := s.profile
		s.mu.Unlock()

		reply = i18n.T(lang, i18n.QuestionnaireRequired)
		if profile != nil {
			generated, err := m.planner.Generate(*profile, lang, m.now())
			if err != nil {
				m.logger.Warn("plan generation from chat failed", "session", s.ID, "error", err)
			} else {
				plan = generated
				reply = i18n.T(lang, i18n.DietPlanCreated)
				m.opts.Telemetry.DietPlan(recordCtx, "chat", string(lang), plan.DailyCaloricIntake)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Turn{Phase: resp.Phase.String(), Outcome: resp.Outcome}
	turn.Reply = assistant.Message{Sender: assistant.SenderAssistant, Text: reply}
	s.history = append(s.history, turn.Reply)

	switch {
	case plan != nil:
		s.dietPlan = plan
		turn.DietPlan = plan
		s.notify(NotificationSuccess, i18n.T(lang, i18n.NotifyDietPlanReady))
	case resp.WorkoutPlan != nil && s.workoutPlan == nil:
		s.workoutPlan = resp.WorkoutPlan
		turn.WorkoutPlan = resp.WorkoutPlan
		s.notify(NotificationSuccess, i18n.T(lang, i18n.NotifyWorkoutPlanReady))
	case resp.Outcome == assistant.OutcomeServiceError:
		s.notify(NotificationError, i18n.T(lang, i18n.NotifyServiceFailure))
	}

	m.logger.Debug("turn completed",
		"session", s.ID,
		"phase", turn.Phase,
		"outcome", string(turn.Outcome),
		"latency", resp.Meta.Latency,
	)
	return turn, nil
}

// SubmitQuestionnaire stores the profile and replaces the diet plan with a
// freshly generated one. Validation failures leave the session untouched.
// It is rejected with ErrTurnInProgress while an assistant turn is running.
func (m *Manager) SubmitQuestionnaire(ctx context.Context, id string, profile health.Profile) (*diet.DietPlan, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if !s.turn.TryLock() {
		return nil, ErrTurnInProgress
	}
	defer s.turn.Unlock()

	s.mu.Lock()
	lang := s.lang
	s.mu.Unlock()

	plan, err := m.planner.Generate(profile, lang, m.now())
	if err != nil {
		return nil, err
	}
	m.opts.Telemetry.DietPlan(ctx, "questionnaire", string(lang), plan.DailyCaloricIntake)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &profile
	s.dietPlan = plan
	s.notify(NotificationSuccess, i18n.T(lang, i18n.NotifyProfileUpdated))
	return plan, nil
}
