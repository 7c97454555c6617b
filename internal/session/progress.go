package session

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"calorina/internal/diet"
	"calorina/internal/i18n"
	"calorina/internal/shared"
	"calorina/internal/subscription"
)

// ItemKind tells a meal from an exercise when tracking completion.
type ItemKind string

const (
	KindMeal     ItemKind = "meal"
	KindExercise ItemKind = "exercise"
)

// Completion lists what the user ticked off on a given date.
type Completion struct {
	Meals     []string `json:"meals"`
	Exercises []string `json:"exercises"`
}

func (c *Completion) clone() Completion {
	return Completion{Meals: slices.Clone(c.Meals), Exercises: slices.Clone(c.Exercises)}
}

// ToggleCompletion marks the named item done on date, or undone if it was
// already marked. It returns whether the item is now complete.
func (m *Manager) ToggleCompletion(id, date string, kind ItemKind, name string) (bool, error) {
	if _, err := time.Parse(diet.DateLayout, date); err != nil {
		return false, fmt.Errorf("%w: date %q must be YYYY-MM-DD", shared.ErrInvalidInput, date)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: item name is empty", shared.ErrInvalidInput)
	}

	s, err := m.get(id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.completion[date]
	if !ok {
		c = &Completion{Meals: []string{}, Exercises: []string{}}
		s.completion[date] = c
	}

	var list *[]string
	switch kind {
	case KindMeal:
		list = &c.Meals
	case KindExercise:
		list = &c.Exercises
	default:
		return false, fmt.Errorf("%w: unknown item kind %q", shared.ErrInvalidInput, kind)
	}

	if i := slices.Index(*list, name); i >= 0 {
		*list = slices.Delete(*list, i, i+1)
		return false, nil
	}
	*list = append(*list, name)
	return true, nil
}

// AddCustomMeals appends items to the snack bucket of date.
func (m *Manager) AddCustomMeals(id, date string, items []diet.MealItem) (*diet.DietPlan, error) {
	if _, err := time.Parse(diet.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", shared.ErrInvalidInput, date)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no meals to add", shared.ErrInvalidInput)
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: meal name is empty", shared.ErrInvalidInput)
		}
		if it.Calories < 0 {
			return nil, fmt.Errorf("%w: %s has negative calories", shared.ErrInvalidInput, it.Name)
		}
	}

	s, err := m.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dietPlan == nil {
		return nil, ErrNoDietPlan
	}
	s.dietPlan = s.dietPlan.WithCustomMeals(date, items)
	return s.dietPlan, nil
}

// SubscribeMeals places a meal-delivery subscription for the session.
func (m *Manager) SubscribeMeals(id string, req subscription.Request) (*subscription.Subscription, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sub, err := subscription.Subscribe(req, m.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = &sub
	s.notify(NotificationSuccess, i18n.T(s.lang, i18n.NotifySubscribed))
	m.logger.Info("meal subscription placed", "session", id, "order", sub.OrderID, "plan", string(req.PlanType))
	return &sub, nil
}

// DayStats is the adherence of a single day.
type DayStats struct {
	Date               string  `json:"date"`
	DietAdherence      float64 `json:"dietAdherence"`
	WorkoutAdherence   float64 `json:"workoutAdherence"`
	CompletedMeals     int     `json:"completedMeals"`
	TotalMeals         int     `json:"totalMeals"`
	CompletedExercises int     `json:"completedExercises"`
	TotalExercises     int     `json:"totalExercises"`
}

// Stats summarizes the last seven days ending today.
type Stats struct {
	Days                   []DayStats `json:"days"`
	OverallAdherence       int        `json:"overallAdherence"`
	TotalCompletedMeals    int        `json:"totalCompletedMeals"`
	TotalScheduledMeals    int        `json:"totalScheduledMeals"`
	TotalCompletedWorkouts int        `json:"totalCompletedWorkouts"`
	TotalScheduledWorkouts int        `json:"totalScheduledWorkouts"`
}

// Statistics computes weekly adherence. Workout days are matched to weekdays
// with the plan's first day on Monday.
func (m *Manager) Statistics(id string) (Stats, error) {
	s, err := m.get(id)
	if err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dietPlan == nil {
		return Stats{}, ErrNoDietPlan
	}

	y, mo, d := m.now().Date()
	var st Stats
	sum := 0.0
	for i := 6; i >= 0; i-- {
		date := time.Date(y, mo, d-i, 0, 0, 0, 0, time.UTC)
		key := diet.DateKey(date)
		day := DayStats{Date: key, TotalMeals: s.dietPlan.MealsFor(key).Count()}

		done := s.completion[key]
		if done != nil {
			day.CompletedMeals = len(done.Meals)
		}
		if day.TotalMeals > 0 {
			day.DietAdherence = float64(day.CompletedMeals) / float64(day.TotalMeals) * 100
		}

		if s.workoutPlan != nil {
			idx := (int(date.Weekday()) + 6) % 7
			if idx < len(s.workoutPlan.Days) {
				day.TotalExercises = len(s.workoutPlan.Days[idx].Exercises)
				if done != nil {
					day.CompletedExercises = len(done.Exercises)
				}
				if day.TotalExercises > 0 {
					day.WorkoutAdherence = float64(day.CompletedExercises) / float64(day.TotalExercises) * 100
				}
			}
		}

		sum += day.DietAdherence + day.WorkoutAdherence
		st.TotalCompletedMeals += day.CompletedMeals
		st.TotalScheduledMeals += day.TotalMeals
		st.TotalCompletedWorkouts += day.CompletedExercises
		st.TotalScheduledWorkouts += day.TotalExercises
		st.Days = append(st.Days, day)
	}

	possible := 100.0
	if s.workoutPlan != nil {
		possible = 200
	}
	st.OverallAdherence = int(math.Round(sum / (float64(len(st.Days)) * possible) * 100))
	return st, nil
}
