package telegram

import (
	"fmt"
	"strings"
	"time"

	"calorina/internal/assistant"
	"calorina/internal/diet"
	"calorina/internal/metrics"
	"calorina/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🥗 *Calorina*
Just chat with me to build your diet and workout plans.

/start - begin the conversation
/profile - enter your details
/plan - today's meals
/workout - your workout plan
/stats - weekly progress
/lang en|ar - change language
/reset - start over`

const profileUsage = "Usage: `/profile <male|female> <age> <weight kg> <height cm> <activity>`\n" +
	"Activity: sedentary, light, moderate, active, veryActive"

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

var bucketTitles = map[diet.MealTime]string{
	diet.Breakfast: "🍳 Breakfast",
	diet.Lunch:     "🥗 Lunch",
	diet.Dinner:    "🍲 Dinner",
	diet.Snack:     "🍎 Snack",
}

// formatDietPlanMarkdown renders the plan targets and the meals of day.
func formatDietPlanMarkdown(plan *diet.DietPlan, day time.Time) string {
	date := diet.DateKey(day)
	meals := plan.MealsFor(date)

	var sb strings.Builder
	sb.WriteString("📋 *Your Diet Plan*\n")
	sb.WriteString(fmt.Sprintf("_%s_\n\n", esc(plan.Summary)))
	sb.WriteString(fmt.Sprintf("🔥 *Daily target:* %d kcal\n", plan.DailyCaloricIntake))
	t := plan.MacronutrientTargets
	sb.WriteString(fmt.Sprintf("Protein %s • Carbs %s • Fat %s\n\n", t.Protein, t.Carbohydrates, t.Fat))

	sb.WriteString(fmt.Sprintf("📅 *%s*\n", date))
	for _, mt := range diet.MealTimes {
		items := meals.Bucket(mt)
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", bucketTitles[mt]))
		for _, it := range items {
			sb.WriteString(fmt.Sprintf("• %s (%d kcal)\n", esc(it.Name), it.Calories))
		}
	}
	sb.WriteString(fmt.Sprintf("\n⚖️ *Total:* %d kcal", meals.TotalCalories()))
	return sb.String()
}

func formatWorkoutMarkdown(plan *assistant.WorkoutPlan) string {
	var sb strings.Builder
	sb.WriteString("🏋️ *Your Workout Plan*\n")
	for _, d := range plan.Days {
		sb.WriteString(fmt.Sprintf("\n*%s*: %s\n", esc(d.Day), esc(d.Focus)))
		for _, ex := range d.Exercises {
			sb.WriteString(fmt.Sprintf("• %s: %s x %s\n", esc(ex.Name), esc(ex.Sets), esc(ex.Reps)))
		}
	}
	if plan.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n_%s_", esc(plan.Notes)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatStatsMarkdown(st session.Stats) string {
	var sb strings.Builder
	sb.WriteString("📈 *Weekly Progress*\n\n")
	sb.WriteString(fmt.Sprintf("*Overall adherence:* %d%%\n", st.OverallAdherence))
	sb.WriteString(fmt.Sprintf("*Meals:* %d/%d\n", st.TotalCompletedMeals, st.TotalScheduledMeals))
	if st.TotalScheduledWorkouts > 0 {
		sb.WriteString(fmt.Sprintf("*Exercises:* %d/%d\n", st.TotalCompletedWorkouts, st.TotalScheduledWorkouts))
	}
	sb.WriteString("\n")
	for _, d := range st.Days {
		sb.WriteString(fmt.Sprintf("• %s: 🥗 %.0f%%", d.Date, d.DietAdherence))
		if d.TotalExercises > 0 {
			sb.WriteString(fmt.Sprintf(" 🏋️ %.0f%%", d.WorkoutAdherence))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs, %d errors, %dms avg, %d plans)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.ServiceErrors, d.AvgLatencyMS, d.DietPlans))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Sessions: %d\n", health.ActiveSessions))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s", health.DataDiskSize))
	return sb.String()
}

func notificationIcon(t session.NotificationType) string {
	switch t {
	case session.NotificationSuccess:
		return "✅"
	case session.NotificationError:
		return "❌"
	}
	return "ℹ️"
}
