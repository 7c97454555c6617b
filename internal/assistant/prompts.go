package assistant

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"calorina/internal/i18n"
)

// PlanReady is the sentinel the nutritionist replies with once the
// questionnaire is complete.
const PlanReady = "PLAN_READY"

//go:embed prompts/*.md
var promptFS embed.FS

type promptData struct {
	Sentinel string
}

// instructionSet holds one rendered instruction per phase and language.
type instructionSet map[Phase]map[i18n.Language]string

var instructions = mustLoadInstructions(promptFS)

func mustLoadInstructions(fsys fs.FS) instructionSet {
	set, err := loadInstructions(fsys)
	if err != nil {
		panic(fmt.Sprintf("assistant: %v", err))
	}
	return set
}

// loadInstructions renders prompts/<phase>.<lang>.md for every phase and
// language and fails if any is missing or empty.
func loadInstructions(fsys fs.FS) (instructionSet, error) {
	data := promptData{Sentinel: PlanReady}
	set := make(instructionSet, len(Phases))

	for _, phase := range Phases {
		set[phase] = make(map[i18n.Language]string, len(i18n.Languages))
		for _, lang := range i18n.Languages {
			name := fmt.Sprintf("prompts/%s.%s.md", phase, lang)
			raw, err := fs.ReadFile(fsys, name)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}

			tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", name, err)
			}

			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return nil, fmt.Errorf("failed to render %s: %w", name, err)
			}

			text := strings.TrimSpace(buf.String())
			if text == "" {
				return nil, fmt.Errorf("%s is empty", name)
			}
			set[phase][lang] = text
		}
	}
	return set, nil
}

// Instruction returns the persona instruction for a phase. Unknown languages
// fall back to English. An unknown phase is a programming error and panics.
func Instruction(phase Phase, lang i18n.Language) string {
	byLang, ok := instructions[phase]
	if !ok {
		panic(fmt.Sprintf("assistant: no instruction for %v", phase))
	}
	if text, ok := byLang[lang]; ok {
		return text
	}
	return byLang[i18n.English]
}
