package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"calorina/internal/diet"
	"calorina/internal/health"
	"calorina/internal/i18n"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a diet plan offline from questionnaire answers",
		Run:   runPlan,
	}

	cmd.Flags().String("gender", "", "male or female (required)")
	cmd.Flags().String("age", "", "Age in years (required)")
	cmd.Flags().String("weight", "", "Weight in kg (required)")
	cmd.Flags().String("height", "", "Height in cm (required)")
	cmd.Flags().String("activity", string(health.Sedentary), "sedentary, light, moderate, active, veryActive")
	cmd.Flags().String("lang", "en", "Language: en or ar")
	cmd.Flags().String("date", "", "Centre date YYYY-MM-DD (default: today)")
	cmd.Flags().StringP("format", "f", "text", "Output format: json or text")

	cmd.MarkFlagRequired("gender")
	cmd.MarkFlagRequired("age")
	cmd.MarkFlagRequired("weight")
	cmd.MarkFlagRequired("height")

	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	lang, err := i18n.Parse(get("lang"))
	if err != nil {
		exitErr("plan", err)
	}
	today := time.Now()
	if d := get("date"); d != "" {
		today, err = time.Parse(diet.DateLayout, d)
		if err != nil {
			exitErr("plan", fmt.Errorf("invalid --date: %w", err))
		}
	}

	profile := health.Profile{
		Gender:        health.Gender(strings.ToLower(get("gender"))),
		Age:           get("age"),
		Weight:        get("weight"),
		Height:        get("height"),
		ActivityLevel: health.ActivityLevel(get("activity")),
	}

	if err := writePlan(os.Stdout, profile, lang, today, get("format")); err != nil {
		exitErr("plan", err)
	}
}

func writePlan(w io.Writer, profile health.Profile, lang i18n.Language, today time.Time, format string) error {
	synth, err := diet.NewSynthesizer(diet.DefaultBank())
	if err != nil {
		return err
	}
	plan, err := synth.Generate(profile, lang, today)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprintf(w, "%s\n", plan.Summary)
	fmt.Fprintf(w, "Daily calories: %d kcal\n", plan.DailyCaloricIntake)
	t := plan.MacronutrientTargets
	fmt.Fprintf(w, "Protein %s, carbohydrates %s, fat %s\n", t.Protein, t.Carbohydrates, t.Fat)
	for _, day := range diet.Window(today) {
		if day.Offset < 0 {
			continue
		}
		date := diet.DateKey(day.Date)
		meals := plan.MealsFor(date)
		fmt.Fprintf(w, "\n%s (%d kcal)\n", date, meals.TotalCalories())
		for _, mt := range diet.MealTimes {
			for _, it := range meals.Bucket(mt) {
				fmt.Fprintf(w, "  %-9s %s (%d kcal)\n", mt, it.Name, it.Calories)
			}
		}
	}
	return nil
}
