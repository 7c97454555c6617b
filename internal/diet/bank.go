package diet

import (
	_ "embed"
	"fmt"

	"calorina/internal/i18n"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBankYAML []byte

// Bank holds the candidate meals per language and meal time.
type Bank map[i18n.Language]map[MealTime][]MealItem

// LoadBank decodes a YAML meal bank and validates it.
func LoadBank(data []byte) (Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode meal bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// DefaultBank returns the embedded meal bank.
func DefaultBank() Bank {
	b, err := LoadBank(defaultBankYAML)
	if err != nil {
		panic(err)
	}
	return b
}

// Validate checks that every supported language has at least one meal for
// every meal time.
func (b Bank) Validate() error {
	for _, lang := range i18n.Languages {
		times, ok := b[lang]
		if !ok {
			return fmt.Errorf("meal bank has no entries for language %q", lang)
		}
		for _, t := range MealTimes {
			if len(times[t]) == 0 {
				return fmt.Errorf("meal bank has no %s meals for language %q", t, lang)
			}
		}
	}
	return nil
}

func (b Bank) pick(lang i18n.Language, idx int) DailyMeals {
	times := b[lang]
	at := func(t MealTime) []MealItem {
		bucket := times[t]
		return []MealItem{bucket[idx%len(bucket)]}
	}
	return DailyMeals{
		Breakfast: at(Breakfast),
		Lunch:     at(Lunch),
		Dinner:    at(Dinner),
		Snack:     at(Snack),
	}
}
