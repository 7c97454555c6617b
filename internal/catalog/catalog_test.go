package catalog

import (
	"sync"
	"testing"
	"time"

	"calorina/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed.Meals, 6)
	assert.Equal(t, "Grilled Chicken Salad", seed.Meals[0].Name)
	assert.Equal(t, 7.5, seed.Meals[0].Price)
	assert.Empty(t, seed.Drinks)
}

func TestLoadSeed_Invalid(t *testing.T) {
	_, err := LoadSeed([]byte("meals:\n  - id: 1\n    name: X\n    description: d\n    calories: 0\n    category: Fitness\n    time: Snack\n"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	dup := "meals:\n" +
		"  - {id: 1, name: A, description: d, calories: 1, category: Fitness, time: Snack}\n" +
		"  - {id: 1, name: B, description: d, calories: 1, category: Fitness, time: Snack}\n"
	_, err = LoadSeed([]byte(dup))
	assert.ErrorContains(t, err, "duplicated")
}

func TestMeals_Filter(t *testing.T) {
	c := New(DefaultSeed())

	assert.Len(t, c.Meals(Filter{}), 6)
	assert.Len(t, c.Meals(Filter{Category: HealthyLifestyle}), 2)
	assert.Len(t, c.Meals(Filter{Time: Lunch}), 2)

	got := c.Meals(Filter{Category: HealthyLifestyle, Time: Dinner})
	require.Len(t, got, 1)
	assert.Equal(t, "Salmon with Asparagus", got[0].Name)

	m, err := c.Meal(5)
	require.NoError(t, err)
	assert.Equal(t, "Bodybuilder Steak", m.Name)

	_, err = c.Meal(99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddMeal(t *testing.T) {
	c := New(DefaultSeed())
	c.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	m, err := c.AddMeal(Meal{Name: " Tuna Wrap ", Description: "Whole wheat wrap.", Calories: 420})
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), m.ID)
	assert.Equal(t, "Tuna Wrap", m.Name)
	assert.Equal(t, WeightLoss, m.Category)
	assert.Equal(t, Breakfast, m.Time)

	second, err := c.AddMeal(Meal{Name: "Oats", Description: "d", Calories: 300, Category: Fitness, Time: Snack})
	require.NoError(t, err)
	assert.Equal(t, m.ID+1, second.ID, "ids stay unique within one millisecond")

	meals := c.Meals(Filter{})
	require.Len(t, meals, 8)
	assert.Equal(t, "Oats", meals[0].Name, "new meals are prepended")

	invalid := []Meal{
		{Description: "d", Calories: 1},
		{Name: "n", Calories: 1},
		{Name: "n", Description: "d"},
		{Name: "n", Description: "d", Calories: 1, Category: "Keto"},
		{Name: "n", Description: "d", Calories: 1, Time: "Brunch"},
		{Name: "n", Description: "d", Calories: 1, Price: -1},
	}
	for _, in := range invalid {
		_, err := c.AddMeal(in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, "%+v", in)
	}
	assert.Len(t, c.Meals(Filter{}), 8)
}

func TestAddMeal_Concurrent(t *testing.T) {
	c := New(DefaultSeed())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.AddMeal(Meal{Name: "m", Description: "d", Calories: 100})
		}()
	}
	wg.Wait()

	ids := map[int64]bool{}
	for _, m := range c.Meals(Filter{}) {
		assert.False(t, ids[m.ID], "duplicate id %d", m.ID)
		ids[m.ID] = true
	}
}

func TestDrinks(t *testing.T) {
	c := New(DefaultSeed())

	_, err := c.AddDrink(Drink{Name: "Latte", Description: "Oat milk", Calories: 120})
	require.NoError(t, err)
	_, err = c.AddDrink(Drink{Name: "Whey Shake", Description: "Chocolate", Calories: 200, Category: ProteinShakes})
	require.NoError(t, err)
	_, err = c.AddDrink(Drink{Name: "Water", Description: "Still", Calories: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Len(t, c.Drinks(""), 2)
	got := c.Drinks(HotDrinks)
	require.Len(t, got, 1)
	assert.Equal(t, "Latte", got[0].Name)
}

func TestBackgroundImage(t *testing.T) {
	c := New(DefaultSeed())
	assert.Empty(t, c.BackgroundImage())
	c.SetBackgroundImage(" https://img.test/bg.jpg ")
	assert.Equal(t, "https://img.test/bg.jpg", c.BackgroundImage())
}
