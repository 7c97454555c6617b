package assistant

import "github.com/google/generative-ai-go/genai"

// WorkoutPlan is the structured plan produced by the trainer phase.
type WorkoutPlan struct {
	Notes string       `json:"notes"`
	Days  []WorkoutDay `json:"days"`
}

// WorkoutDay is one training day of a WorkoutPlan.
type WorkoutDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is a single movement. Sets and Reps are free text ("3 sets",
// "30 seconds").
type Exercise struct {
	Name        string `json:"name"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
	Description string `json:"description"`
}

// WorkoutPlanSchema constrains trainer replies to the WorkoutPlan shape.
var WorkoutPlanSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"notes": {
			Type:        genai.TypeString,
			Description: "A brief, encouraging note for the user about their new workout plan.",
		},
		"days": {
			Type:        genai.TypeArray,
			Description: "A list of workout days, typically 3-5 days.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"day":   {Type: genai.TypeString, Description: "e.g., 'Day 1' or 'Monday'"},
					"focus": {Type: genai.TypeString, Description: "The main focus of the day, e.g., 'Full Body Strength' or 'Cardio & Core'"},
					"exercises": {
						Type:        genai.TypeArray,
						Description: "A list of 3-5 exercises for the day.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":        {Type: genai.TypeString, Description: "The name of the exercise."},
								"sets":        {Type: genai.TypeString, Description: "Number of sets, e.g., '3 sets'"},
								"reps":        {Type: genai.TypeString, Description: "Number of reps or duration, e.g., '10-12 reps' or '30 seconds'"},
								"description": {Type: genai.TypeString, Description: "A brief description of how to perform the exercise."},
							},
							Required: []string{"name", "sets", "reps", "description"},
						},
					},
				},
				Required: []string{"day", "focus", "exercises"},
			},
		},
	},
	Required: []string{"notes", "days"},
}

// ExerciseCount returns the number of exercises across all days.
func (p *WorkoutPlan) ExerciseCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Exercises)
	}
	return n
}
