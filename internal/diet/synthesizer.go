package diet

import (
	"fmt"
	"math"
	"time"

	"calorina/internal/health"
	"calorina/internal/i18n"
)

// Schedule window relative to "today", inclusive.
const (
	WindowStart = -7
	WindowEnd   = 13
)

// Synthesizer builds diet plans from a fixed meal bank. It holds no mutable
// state and is safe for concurrent use.
type Synthesizer struct {
	bank Bank
}

// NewSynthesizer creates a Synthesizer over bank.
func NewSynthesizer(bank Bank) (*Synthesizer, error) {
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{bank: bank}, nil
}

// Generate validates profile and produces a plan whose schedule is centred on
// the calendar date of today.
func (s *Synthesizer) Generate(profile health.Profile, lang i18n.Language, today time.Time) (*DietPlan, error) {
	metrics, err := health.Parse(profile)
	if err != nil {
		return nil, err
	}
	if _, ok := s.bank[lang]; !ok {
		return nil, fmt.Errorf("no meals available for language %q", lang)
	}

	kcal := int(math.Round(metrics.TDEE()))

	schedule := make(map[string]DailyMeals, WindowEnd-WindowStart+1)
	for _, day := range Window(today) {
		schedule[DateKey(day.Date)] = s.bank.pick(lang, bankIndex(day.Offset))
	}

	return &DietPlan{
		Summary:              i18n.T(lang, i18n.DietPlanSummary),
		DailyCaloricIntake:   kcal,
		MacronutrientTargets: Macros(kcal),
		Template:             s.bank.pick(lang, 0),
		Schedule:             schedule,
	}, nil
}

// Macros splits kcal into 30% protein, 40% carbohydrates and 30% fat.
func Macros(kcal int) MacronutrientTargets {
	grams := func(share, kcalPerGram float64) string {
		return fmt.Sprintf("%dg", int(math.Round(float64(kcal)*share/kcalPerGram)))
	}
	return MacronutrientTargets{
		Protein:       grams(0.3, 4),
		Carbohydrates: grams(0.4, 4),
		Fat:           grams(0.3, 9),
	}
}

// WindowDay is a scheduled date and its signed distance from today.
type WindowDay struct {
	Offset int
	Date   time.Time
}

// Window lists the scheduled dates around the calendar date of today.
func Window(today time.Time) []WindowDay {
	y, m, d := today.Date()
	days := make([]WindowDay, 0, WindowEnd-WindowStart+1)
	for i := WindowStart; i <= WindowEnd; i++ {
		days = append(days, WindowDay{
			Offset: i,
			Date:   time.Date(y, m, d+i, 0, 0, 0, 0, time.UTC),
		})
	}
	return days
}

func bankIndex(offset int) int {
	idx := offset % 2
	if idx < 0 {
		idx = -idx
	}
	return idx
}
