package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"calorina/internal/i18n"
)

var (
	// fencedJSONPattern matches the first ```json fenced block.
	fencedJSONPattern = regexp.MustCompile("(?s)```json[ \\t]*\\r?\\n(.*?)\\r?\\n?[ \\t]*```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// Reply is the decoded form of a trainer reply: either a PlainMessage or a
// MessageWithPlan.
type Reply interface {
	Message() string
	isReply()
}

// PlainMessage is a reply with no structured plan.
type PlainMessage struct {
	Text string
}

// MessageWithPlan is a reply carrying a workout plan.
type MessageWithPlan struct {
	Text string
	Plan WorkoutPlan
}

func (m PlainMessage) Message() string    { return m.Text }
func (m MessageWithPlan) Message() string { return m.Text }
func (PlainMessage) isReply()             {}
func (MessageWithPlan) isReply()          {}

// DecodeError reports a trainer reply from which no workout plan could be
// extracted. It is logged, never returned to callers of GetResponse.
type DecodeError struct {
	Raw    string
	Fenced bool
	Err    error
}

func (e *DecodeError) Error() string {
	where := "bare reply"
	if e.Fenced {
		where = "fenced block"
	}
	return fmt.Sprintf("no workout plan in %s: %v", where, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// decodeTier is one step of the decoding chain.
type decodeTier func(raw string, lang i18n.Language) (Reply, bool)

var decodeChain = []decodeTier{fromFencedBlock, fromBareJSON}

// DecodeWorkoutReply turns a raw trainer reply into a Reply. It always
// succeeds: when no tier yields a plan the trimmed text is returned as a
// PlainMessage together with the DecodeError explaining why.
func DecodeWorkoutReply(raw string, lang i18n.Language) (Reply, *DecodeError) {
	raw = strings.TrimSpace(raw)
	for _, tier := range decodeChain {
		if reply, ok := tier(raw, lang); ok {
			return reply, nil
		}
	}
	return PlainMessage{Text: raw}, diagnose(raw)
}

// fromFencedBlock parses the first ```json block. The text before the fence
// is the conversational message.
func fromFencedBlock(raw string, lang i18n.Language) (Reply, bool) {
	loc := fencedJSONPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return nil, false
	}
	plan, err := parsePlan(raw[loc[2]:loc[3]])
	if err != nil {
		return nil, false
	}
	text := strings.TrimSpace(raw[:loc[0]])
	if text == "" {
		text = i18n.T(lang, i18n.WorkoutPlanConfirmation)
	}
	return MessageWithPlan{Text: text, Plan: plan}, true
}

// fromBareJSON parses the whole reply as a plan. No message can be separated
// so the localized confirmation is used.
func fromBareJSON(raw string, lang i18n.Language) (Reply, bool) {
	plan, err := parsePlan(raw)
	if err != nil {
		return nil, false
	}
	return MessageWithPlan{Text: i18n.T(lang, i18n.WorkoutPlanConfirmation), Plan: plan}, true
}

// parsePlan accepts only a JSON object; scalars, arrays and null are
// rejected. Trailing commas are stripped only when the text does not decode
// as written, so valid string values are never rewritten.
func parsePlan(s string) (WorkoutPlan, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return WorkoutPlan{}, fmt.Errorf("not a JSON object")
	}
	plan, err := decodePlan(s)
	if err == nil {
		return plan, nil
	}
	repaired := trailingCommaPattern.ReplaceAllString(s, "$1")
	if repaired == s {
		return WorkoutPlan{}, err
	}
	if plan, rerr := decodePlan(repaired); rerr == nil {
		return plan, nil
	}
	return WorkoutPlan{}, err
}

func decodePlan(s string) (WorkoutPlan, error) {
	var plan WorkoutPlan
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&plan); err != nil {
		return WorkoutPlan{}, err
	}
	if dec.More() {
		return WorkoutPlan{}, fmt.Errorf("unexpected data after JSON object")
	}
	return plan, nil
}

func diagnose(raw string) *DecodeError {
	if loc := fencedJSONPattern.FindStringSubmatchIndex(raw); loc != nil {
		_, err := parsePlan(raw[loc[2]:loc[3]])
		return &DecodeError{Raw: raw, Fenced: true, Err: err}
	}
	_, err := parsePlan(raw)
	return &DecodeError{Raw: raw, Err: err}
}
