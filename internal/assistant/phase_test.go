package assistant

import (
	"testing"
	"testing/fstest"

	"calorina/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPhase(t *testing.T) {
	tests := []struct {
		diet, workout bool
		want          Phase
	}{
		{false, false, Nutritionist},
		{false, true, Nutritionist},
		{true, false, Trainer},
		{true, true, Consultant},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectPhase(tt.diet, tt.workout), "diet=%v workout=%v", tt.diet, tt.workout)
	}
}

func TestInstruction(t *testing.T) {
	for _, phase := range Phases {
		for _, lang := range i18n.Languages {
			assert.NotEmpty(t, Instruction(phase, lang), "%v/%s", phase, lang)
		}
	}

	assert.Contains(t, Instruction(Nutritionist, i18n.English), "'PLAN_READY'")
	assert.Contains(t, Instruction(Nutritionist, i18n.Arabic), "'PLAN_READY'")
	assert.NotContains(t, Instruction(Nutritionist, i18n.English), "{{")
	assert.Contains(t, Instruction(Trainer, i18n.English), "```json")
	assert.Contains(t, Instruction(Consultant, i18n.English), "health consultant")
	assert.Equal(t, Instruction(Trainer, i18n.English), Instruction(Trainer, i18n.Language("fr")))

	assert.Panics(t, func() { Instruction(Phase(7), i18n.English) })
}

func TestLoadInstructions_Missing(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/nutritionist.en.md": {Data: []byte("hello {{.Sentinel}}")},
	}
	_, err := loadInstructions(fsys)
	require.Error(t, err)

	for _, phase := range Phases {
		for _, lang := range i18n.Languages {
			fsys["prompts/"+phase.String()+"."+string(lang)+".md"] = &fstest.MapFile{Data: []byte("x")}
		}
	}
	fsys["prompts/consultant.ar.md"] = &fstest.MapFile{Data: []byte("  \n")}
	_, err = loadInstructions(fsys)
	assert.ErrorContains(t, err, "consultant.ar.md is empty")

	fsys["prompts/consultant.ar.md"] = &fstest.MapFile{Data: []byte("{{.Unknown}}")}
	_, err = loadInstructions(fsys)
	assert.Error(t, err)
}
