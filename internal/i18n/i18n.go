// Package i18n holds the message catalog for the two supported languages.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported UI/assistant language.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Languages lists every supported language in catalog order.
var Languages = []Language{English, Arabic}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Parse converts a language code into a Language.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Arabic:
		return Arabic, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// Negotiate picks the best supported language for an Accept-Language header,
// falling back to def when nothing matches.
func Negotiate(acceptLanguage string, def Language) Language {
	if strings.TrimSpace(acceptLanguage) == "" {
		return def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	return Languages[idx]
}

// Key identifies a localized message.
type Key int

const (
	GreetingPrompt Key = iota
	ServiceUnavailable
	WorkoutPlanConfirmation
	DietPlanSummary
	DietPlanCreated
	QuestionnaireRequired
	NotifyDietPlanReady
	NotifyWorkoutPlanReady
	NotifyProfileUpdated
	NotifySubscribed
	NotifyServiceFailure

	numKeys
)

var catalog = map[Language][numKeys]string{
	English: {
		GreetingPrompt:          "Hello, please start.",
		ServiceUnavailable:      "I'm sorry, I'm having trouble connecting to my services. Please try again later.",
		WorkoutPlanConfirmation: "Here is your workout plan!",
		DietPlanSummary:         "A personalized plan for you based on your goals.",
		DietPlanCreated:         "Great! I've created your personalized diet plan. You can view it on your profile.",
		QuestionnaireRequired:   "I have everything I need. Please confirm your details in the health questionnaire so I can build your plan.",
		NotifyDietPlanReady:     "Your diet plan is ready!",
		NotifyWorkoutPlanReady:  "Your workout plan is ready!",
		NotifyProfileUpdated:    "Your profile and diet plan have been updated!",
		NotifySubscribed:        "You've successfully subscribed to meal delivery!",
		NotifyServiceFailure:    "Failed to connect to the AI service.",
	},
	Arabic: {
		GreetingPrompt:          "مرحباً، يرجى البدء.",
		ServiceUnavailable:      "عذرًا، أواجه مشكلة في الاتصال بخدماتي. يرجى المحاولة مرة أخرى لاحقًا.",
		WorkoutPlanConfirmation: "تفضل خطتك الرياضية!",
		DietPlanSummary:         "خطة مخصصة لك بناءً على أهدافك.",
		DietPlanCreated:         "رائع! لقد أنشأت خطتك الغذائية المخصصة. يمكنك مشاهدتها في ملفك الشخصي.",
		QuestionnaireRequired:   "لدي كل ما أحتاجه. يرجى تأكيد بياناتك في الاستبيان الصحي حتى أتمكن من إعداد خطتك.",
		NotifyDietPlanReady:     "خطتك الغذائية جاهزة!",
		NotifyWorkoutPlanReady:  "خطتك الرياضية جاهزة!",
		NotifyProfileUpdated:    "تم تحديث ملفك الشخصي وخطتك الغذائية!",
		NotifySubscribed:        "لقد اشتركت بنجاح في خدمة توصيل الوجبات!",
		NotifyServiceFailure:    "تعذر الاتصال بخدمة الذكاء الاصطناعي.",
	},
}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
}

// Validate reports the first missing (language, key) pair in the catalog.
func Validate() error {
	for _, lang := range Languages {
		msgs, ok := catalog[lang]
		if !ok {
			return fmt.Errorf("i18n: no catalog for language %q", lang)
		}
		for k := Key(0); k < numKeys; k++ {
			if strings.TrimSpace(msgs[k]) == "" {
				return fmt.Errorf("i18n: language %q is missing message %d", lang, k)
			}
		}
	}
	return nil
}

// T returns the message for key in lang. Unknown languages use English.
func T(lang Language, key Key) string {
	if key < 0 || key >= numKeys {
		panic(fmt.Sprintf("i18n: unknown key %d", key))
	}
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog[English]
	}
	return msgs[key]
}
