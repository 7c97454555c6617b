package assistant

import "fmt"

// Phase is the behavioural mode of the assistant for a turn.
type Phase int

const (
	// Nutritionist collects the health questionnaire through conversation.
	Nutritionist Phase = iota
	// Trainer asks about equipment and produces a workout plan.
	Trainer
	// Consultant answers open-ended follow-up questions.
	Consultant
)

// Phases lists every phase in order.
var Phases = []Phase{Nutritionist, Trainer, Consultant}

// SelectPhase derives the phase from which plans already exist. When there is
// no diet plan the workout flag is irrelevant.
func SelectPhase(hasDietPlan, hasWorkoutPlan bool) Phase {
	switch {
	case !hasDietPlan:
		return Nutritionist
	case !hasWorkoutPlan:
		return Trainer
	default:
		return Consultant
	}
}

func (p Phase) String() string {
	switch p {
	case Nutritionist:
		return "nutritionist"
	case Trainer:
		return "trainer"
	case Consultant:
		return "consultant"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
