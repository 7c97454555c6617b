package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"calorina/internal/auth"
	"calorina/internal/health"
	"calorina/internal/i18n"
	"calorina/internal/session"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Long: "Interactive chat. Type /profile <gender> <age> <weight> <height> <activity> to submit the questionnaire, " +
			"/plan or /workout to print plans, /quit to leave.",
		Run: runChat,
	}
	cmd.Flags().String("lang", "", "Language: en or ar (default: DEFAULT_LANGUAGE)")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger := newLogger()

	a, err := newApp(cfg, logger)
	if err != nil {
		exitErr("start", err)
	}
	defer a.Close()

	langFlag, _ := cmd.Flags().GetString("lang")
	lang := i18n.Language(cfg.DefaultLanguage)
	if langFlag != "" {
		if lang, err = i18n.Parse(langFlag); err != nil {
			exitErr("chat", err)
		}
	}

	id := a.sessions.Create(auth.User{Name: "terminal"}, lang)
	if err := chatLoop(cmd.Context(), a.sessions, id, os.Stdin, os.Stdout); err != nil {
		exitErr("chat", err)
	}
}

// chatLoop greets the user and answers each input line until EOF or /quit.
func chatLoop(ctx context.Context, sessions *session.Manager, id string, in io.Reader, out io.Writer) error {
	turn, err := sessions.Start(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "assistant> %s\n", turn.Reply.Text)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/plan", line == "/workout":
			if err := printPlans(out, sessions, id, line == "/workout"); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(line, "/profile"):
			fields := strings.Fields(strings.TrimPrefix(line, "/profile"))
			if len(fields) != 5 {
				fmt.Fprintln(out, "usage: /profile <male|female> <age> <weight> <height> <activity>")
				continue
			}
			plan, err := sessions.SubmitQuestionnaire(ctx, id, health.Profile{
				Gender: health.Gender(fields[0]), Age: fields[1], Weight: fields[2], Height: fields[3],
				ActivityLevel: health.ActivityLevel(fields[4]),
			})
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "diet plan: %d kcal/day\n", plan.DailyCaloricIntake)
			continue
		}

		turn, err := sessions.SendMessage(ctx, id, line)
		if errors.Is(err, session.ErrTurnInProgress) {
			fmt.Fprintln(out, "busy, try again")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "assistant> %s\n", turn.Reply.Text)
		if turn.DietPlan != nil {
			fmt.Fprintf(out, "diet plan: %d kcal/day\n", turn.DietPlan.DailyCaloricIntake)
		}
		if turn.WorkoutPlan != nil {
			fmt.Fprintf(out, "workout plan: %d days, %d exercises\n", len(turn.WorkoutPlan.Days), turn.WorkoutPlan.ExerciseCount())
		}
	}
}

func printPlans(out io.Writer, sessions *session.Manager, id string, workout bool) error {
	view, err := sessions.Snapshot(id)
	if err != nil {
		return err
	}
	if workout {
		if view.WorkoutPlan == nil {
			fmt.Fprintln(out, "no workout plan yet")
			return nil
		}
		for _, d := range view.WorkoutPlan.Days {
			fmt.Fprintf(out, "%s: %s\n", d.Day, d.Focus)
			for _, ex := range d.Exercises {
				fmt.Fprintf(out, "  - %s %s x %s\n", ex.Name, ex.Sets, ex.Reps)
			}
		}
		return nil
	}
	if view.DietPlan == nil {
		fmt.Fprintln(out, "no diet plan yet")
		return nil
	}
	p := view.DietPlan
	fmt.Fprintf(out, "%d kcal/day, protein %s, carbohydrates %s, fat %s\n",
		p.DailyCaloricIntake, p.MacronutrientTargets.Protein, p.MacronutrientTargets.Carbohydrates, p.MacronutrientTargets.Fat)
	return nil
}
