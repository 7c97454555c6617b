// Package catalog holds the meal market and café menu managed by admins.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"calorina/internal/shared"

	"gopkg.in/yaml.v3"
)

// Category groups market meals by goal.
type Category string

const (
	WeightLoss       Category = "Weight Loss"
	MuscleGain       Category = "Muscle Gain"
	HealthyLifestyle Category = "Healthy Lifestyle"
	Bodybuilding     Category = "Bodybuilding"
	Fitness          Category = "Fitness"
)

// Categories lists every meal category.
var Categories = []Category{WeightLoss, MuscleGain, HealthyLifestyle, Bodybuilding, Fitness}

// Time is the meal time a market meal is sold for.
type Time string

const (
	Breakfast Time = "Breakfast"
	Lunch     Time = "Lunch"
	Dinner    Time = "Dinner"
	Snack     Time = "Snack"
)

// Times lists every meal time.
var Times = []Time{Breakfast, Lunch, Dinner, Snack}

// DrinkCategory groups café drinks.
type DrinkCategory string

const (
	HotDrinks     DrinkCategory = "Hot Drinks"
	ColdDrinks    DrinkCategory = "Cold Drinks"
	ProteinShakes DrinkCategory = "Protein Shakes"
	Juices        DrinkCategory = "Juices"
)

// DrinkCategories lists every drink category.
var DrinkCategories = []DrinkCategory{HotDrinks, ColdDrinks, ProteinShakes, Juices}

// Meal is a market item.
type Meal struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Calories    int      `json:"calories" yaml:"calories"`
	Price       float64  `json:"price" yaml:"price"`
	Image       string   `json:"image,omitempty" yaml:"image"`
	Category    Category `json:"category" yaml:"category"`
	Time        Time     `json:"time" yaml:"time"`
}

// Drink is a café item.
type Drink struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Calories    int           `json:"calories" yaml:"calories"`
	Category    DrinkCategory `json:"category" yaml:"category"`
}

// Seed is the initial catalog content.
type Seed struct {
	Meals  []Meal  `yaml:"meals"`
	Drinks []Drink `yaml:"drinks"`
}

//go:embed seed.yaml
var seedYAML []byte

// LoadSeed parses and validates catalog seed data.
func LoadSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to parse catalog seed: %w", err)
	}
	seen := map[int64]bool{}
	for _, m := range s.Meals {
		if err := validateMeal(m); err != nil {
			return Seed{}, fmt.Errorf("seed meal %d: %w", m.ID, err)
		}
		if m.ID <= 0 || seen[m.ID] {
			return Seed{}, fmt.Errorf("seed meal %q: id %d is missing or duplicated", m.Name, m.ID)
		}
		seen[m.ID] = true
	}
	for _, d := range s.Drinks {
		if err := validateDrink(d); err != nil {
			return Seed{}, fmt.Errorf("seed drink %q: %w", d.Name, err)
		}
	}
	return s, nil
}

// DefaultSeed returns the embedded seed. It panics if the embedded file is
// invalid.
func DefaultSeed() Seed {
	s, err := LoadSeed(seedYAML)
	if err != nil {
		panic(err)
	}
	return s
}

// Filter narrows Meals. Empty fields match everything.
type Filter struct {
	Category Category
	Time     Time
}

func (f Filter) match(m Meal) bool {
	return (f.Category == "" || f.Category == m.Category) && (f.Time == "" || f.Time == m.Time)
}

// Catalog is the in-memory market and café. It is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	meals      []Meal
	drinks     []Drink
	background string
	lastID     int64
	now        func() time.Time
}

// New creates a Catalog from seed data.
func New(seed Seed) *Catalog {
	c := &Catalog{
		meals:  slices.Clone(seed.Meals),
		drinks: slices.Clone(seed.Drinks),
		now:    time.Now,
	}
	for _, m := range c.meals {
		c.lastID = max(c.lastID, m.ID)
	}
	return c
}

// Meals returns the meals matching f, newest first.
func (c *Catalog) Meals(f Filter) []Meal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Meal, 0, len(c.meals))
	for _, m := range c.meals {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Meal looks a meal up by id.
func (c *Catalog) Meal(id int64) (Meal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.meals {
		if m.ID == id {
			return m, nil
		}
	}
	return Meal{}, fmt.Errorf("meal %d: %w", id, shared.ErrNotFound)
}

// AddMeal validates m, assigns it a fresh id and puts it first.
func (c *Catalog) AddMeal(m Meal) (Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	if m.Category == "" {
		m.Category = WeightLoss
	}
	if m.Time == "" {
		m.Time = Breakfast
	}
	if err := validateMeal(m); err != nil {
		return Meal{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Millisecond ids, bumped when two meals land in the same millisecond.
	m.ID = max(c.now().UnixMilli(), c.lastID+1)
	c.lastID = m.ID
	c.meals = append([]Meal{m}, c.meals...)
	return m, nil
}

// Drinks returns the café menu, optionally limited to one category.
func (c *Catalog) Drinks(category DrinkCategory) []Drink {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Drink, 0, len(c.drinks))
	for _, d := range c.drinks {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// AddDrink validates d and appends it to the menu.
func (c *Catalog) AddDrink(d Drink) (Drink, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if d.Category == "" {
		d.Category = HotDrinks
	}
	if err := validateDrink(d); err != nil {
		return Drink{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.drinks = append(c.drinks, d)
	return d, nil
}

// BackgroundImage returns the admin-configured background URL.
func (c *Catalog) BackgroundImage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// SetBackgroundImage replaces the background URL. An empty URL resets it.
func (c *Catalog) SetBackgroundImage(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = strings.TrimSpace(url)
}

func validateMeal(m Meal) error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return fmt.Errorf("%w: meal name is required", shared.ErrInvalidInput)
	case strings.TrimSpace(m.Description) == "":
		return fmt.Errorf("%w: meal description is required", shared.ErrInvalidInput)
	case m.Calories <= 0:
		return fmt.Errorf("%w: meal calories must be positive", shared.ErrInvalidInput)
	case m.Price < 0:
		return fmt.Errorf("%w: meal price must not be negative", shared.ErrInvalidInput)
	case !slices.Contains(Categories, m.Category):
		return fmt.Errorf("%w: unknown meal category %q", shared.ErrInvalidInput, m.Category)
	case !slices.Contains(Times, m.Time):
		return fmt.Errorf("%w: unknown meal time %q", shared.ErrInvalidInput, m.Time)
	}
	return nil
}

func validateDrink(d Drink) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: drink name is required", shared.ErrInvalidInput)
	case strings.TrimSpace(d.Description) == "":
		return fmt.Errorf("%w: drink description is required", shared.ErrInvalidInput)
	case d.Calories <= 0:
		return fmt.Errorf("%w: drink calories must be positive", shared.ErrInvalidInput)
	case !slices.Contains(DrinkCategories, d.Category):
		return fmt.Errorf("%w: unknown drink category %q", shared.ErrInvalidInput, d.Category)
	}
	return nil
}
