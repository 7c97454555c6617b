// Package session holds per-user state and drives the assistant and the diet
// synthesizer on the user's behalf.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"calorina/internal/assistant"
	"calorina/internal/auth"
	"calorina/internal/cart"
	"calorina/internal/diet"
	"calorina/internal/health"
	"calorina/internal/i18n"
	"calorina/internal/shared"
	"calorina/internal/subscription"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or logged-out sessions.
	ErrNotFound = fmt.Errorf("session %w", shared.ErrNotFound)
	// ErrTurnInProgress is returned when a message arrives while the previous
	// one is still being answered.
	ErrTurnInProgress = errors.New("session: a reply is already in progress")
	// ErrNoDietPlan is returned by operations that need a diet plan.
	ErrNoDietPlan = errors.New("session: no diet plan yet")
)

// Responder produces assistant turns.
type Responder interface {
	GetResponse(ctx context.Context, history []assistant.Message, lang i18n.Language, hasDietPlan, hasWorkoutPlan bool) assistant.Response
}

// Planner synthesizes diet plans.
type Planner interface {
	Generate(profile health.Profile, lang i18n.Language, today time.Time) (*diet.DietPlan, error)
}

// Telemetry receives activity events.
type Telemetry interface {
	Turn(ctx context.Context, meta shared.AgentMeta, outcome string)
	DietPlan(ctx context.Context, source, lang string, kcal int)
}

type noTelemetry struct{}

func (noTelemetry) Turn(context.Context, shared.AgentMeta, string) {}
func (noTelemetry) DietPlan(context.Context, string, string, int)  {}

// Session is the state of one signed-in user.
type Session struct {
	ID        string
	CreatedAt time.Time

	// turn gates one in-flight assistant call; mu guards the fields below.
	turn sync.Mutex
	mu   sync.Mutex

	user          auth.User
	lang          i18n.Language
	history       []assistant.Message
	profile       *health.Profile
	dietPlan      *diet.DietPlan
	workoutPlan   *assistant.WorkoutPlan
	completion    map[string]*Completion
	subscription  *subscription.Subscription
	notifications []Notification
	nextNoteID    int64
	cart          cart.Cart
}

// View is a read-only copy of a session.
type View struct {
	ID           string                     `json:"id"`
	User         auth.User                  `json:"user"`
	Language     i18n.Language              `json:"language"`
	Phase        string                     `json:"phase"`
	Conversation []assistant.Message        `json:"conversation"`
	Profile      *health.Profile            `json:"profile,omitempty"`
	DietPlan     *diet.DietPlan             `json:"dietPlan,omitempty"`
	WorkoutPlan  *assistant.WorkoutPlan     `json:"workoutPlan,omitempty"`
	Completion   map[string]Completion      `json:"completion"`
	Subscription *subscription.Subscription `json:"subscription,omitempty"`
	Cart         cart.Summary               `json:"cart"`
}

// Options configure a Manager.
type Options struct {
	// HistoryLimit caps the messages sent to the assistant; zero sends all.
	HistoryLimit int
	// Timeout bounds each assistant call; zero means no extra deadline.
	Timeout         time.Duration
	DefaultLanguage i18n.Language
	Telemetry       Telemetry
	Logger          *slog.Logger
}

// Manager owns every live session. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byKey    map[string]string

	responder Responder
	planner   Planner
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a Manager.
func NewManager(responder Responder, planner Planner, opts Options) *Manager {
	if opts.Telemetry == nil {
		opts.Telemetry = noTelemetry{}
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = i18n.English
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		byKey:     make(map[string]string),
		responder: responder,
		planner:   planner,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a session for user and returns its id. An empty lang uses the
// default language.
func (m *Manager) Create(user auth.User, lang i18n.Language) string {
	if lang == "" {
		lang = m.opts.DefaultLanguage
	}
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  m.now(),
		user:       user,
		lang:       lang,
		completion: make(map[string]*Completion),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.ID, "lang", string(lang), "admin", user.IsAdmin)
	return s.ID
}

// Attach returns the session bound to an external key (such as a chat id),
// creating it on first use.
func (m *Manager) Attach(key string, user auth.User, lang i18n.Language) string {
	m.mu.RLock()
	id, ok := m.byKey[key]
	m.mu.RUnlock()
	if ok {
		return id
	}

	id = m.Create(user, lang)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byKey[key]; ok {
		delete(m.sessions, id)
		return existing
	}
	m.byKey[key] = id
	return id
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Exists reports whether id names a live session.
func (m *Manager) Exists(id string) bool {
	_, err := m.get(id)
	return err == nil
}

func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot(id string) (View, error) {
	s, err := m.get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:           s.ID,
		User:         s.user,
		Language:     s.lang,
		Phase:        assistant.SelectPhase(s.dietPlan != nil, s.workoutPlan != nil).String(),
		Conversation: slices.Clone(s.history),
		Profile:      s.profile,
		DietPlan:     s.dietPlan,
		WorkoutPlan:  s.workoutPlan,
		Completion:   make(map[string]Completion, len(s.completion)),
		Subscription: s.subscription,
		Cart:         s.cart.Summary(),
	}
	for date, c := range s.completion {
		v.Completion[date] = c.clone()
	}
	return v, nil
}

// SetLanguage switches the session language.
func (m *Manager) SetLanguage(id string, lang i18n.Language) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
	return nil
}

// Cart returns the session's cart.
func (m *Manager) Cart(id string) (*cart.Cart, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &s.cart, nil
}

// Reset clears the conversation, plans and progress. The user stays signed in
// and the last questionnaire is kept so the nutritionist can rebuild the plan.
// A reset cannot interleave with a running turn; it fails with
// ErrTurnInProgress instead.
func (m *Manager) Reset(id string) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	if !s.turn.TryLock() {
		return ErrTurnInProgress
	}
	defer s.turn.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.dietPlan = nil
	s.workoutPlan = nil
	s.completion = make(map[string]*Completion)
	return nil
}

// Logout discards the session.
func (m *Manager) Logout(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	for key, sid := range m.byKey {
		if sid == id {
			delete(m.byKey, key)
		}
	}
	m.logger.Info("session closed", "session", id)
	return nil
}
