// Package diet turns a validated health questionnaire into a calorie target,
// macronutrient split and a calendar of meals.
package diet

import (
	"time"
)

// DateLayout is the ISO calendar date used as schedule key.
const DateLayout = "2006-01-02"

// DateKey formats the calendar date of t as a schedule key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MealTime is one of the four daily buckets.
type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Dinner    MealTime = "dinner"
	Snack     MealTime = "snack"
)

// MealTimes lists the buckets in serving order.
var MealTimes = []MealTime{Breakfast, Lunch, Dinner, Snack}

// MealItem is a single dish. Items are compared by name within a day.
type MealItem struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Calories    int    `json:"calories" yaml:"calories"`
}

// DailyMeals holds the meals of one day, bucketed by meal time.
type DailyMeals struct {
	Breakfast []MealItem `json:"breakfast"`
	Lunch     []MealItem `json:"lunch"`
	Dinner    []MealItem `json:"dinner"`
	Snack     []MealItem `json:"snack"`
}

// Bucket returns the items served at t.
func (d DailyMeals) Bucket(t MealTime) []MealItem {
	switch t {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	case Snack:
		return d.Snack
	}
	return nil
}

// Items returns every meal of the day in serving order.
func (d DailyMeals) Items() []MealItem {
	out := make([]MealItem, 0, d.Count())
	for _, t := range MealTimes {
		out = append(out, d.Bucket(t)...)
	}
	return out
}

// Count is the number of meals in the day.
func (d DailyMeals) Count() int {
	return len(d.Breakfast) + len(d.Lunch) + len(d.Dinner) + len(d.Snack)
}

// TotalCalories sums the calories of every meal in the day.
func (d DailyMeals) TotalCalories() int {
	total := 0
	for _, m := range d.Items() {
		total += m.Calories
	}
	return total
}

// Has reports whether a meal with the given name is served that day.
func (d DailyMeals) Has(name string) bool {
	for _, m := range d.Items() {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy whose buckets can be mutated independently.
func (d DailyMeals) Clone() DailyMeals {
	return DailyMeals{
		Breakfast: append([]MealItem{}, d.Breakfast...),
		Lunch:     append([]MealItem{}, d.Lunch...),
		Dinner:    append([]MealItem{}, d.Dinner...),
		Snack:     append([]MealItem{}, d.Snack...),
	}
}

// MacronutrientTargets are daily gram targets rendered as "<n>g".
type MacronutrientTargets struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

// DietPlan is the outcome of a questionnaire submission.
type DietPlan struct {
	Summary              string                `json:"summary"`
	DailyCaloricIntake   int                   `json:"dailyCaloricIntake"`
	MacronutrientTargets MacronutrientTargets  `json:"macronutrientTargets"`
	Template             DailyMeals            `json:"template"`
	Schedule             map[string]DailyMeals `json:"schedule"`
}

// MealsFor returns the scheduled meals for date, or the template when the
// date was not scheduled.
func (p *DietPlan) MealsFor(date string) DailyMeals {
	if day, ok := p.Schedule[date]; ok {
		return day
	}
	return p.Template
}

// WithCustomMeals returns a copy of the plan where items are appended to the
// snack bucket of date. The receiver is left untouched.
func (p *DietPlan) WithCustomMeals(date string, items []MealItem) *DietPlan {
	next := *p
	next.Schedule = make(map[string]DailyMeals, len(p.Schedule)+1)
	for k, v := range p.Schedule {
		next.Schedule[k] = v
	}

	day := p.MealsFor(date).Clone()
	day.Snack = append(day.Snack, items...)
	next.Schedule[date] = day
	return &next
}
