package domain

import "strings"

// Intent is the closed classification of a raw user message used to pick
// edges of the dialogue graph.
type Intent int

const (
	IntentOther Intent = iota
	IntentAffirmative
	IntentNegative
	IntentModeDesign
	IntentModeEvaluate
	IntentFinalize
	IntentContinue
	IntentOptionEvaluate // "1" on the existing-assessment menu
	IntentOptionGenerate // "2" on the existing-assessment menu
)

var intentNames = map[Intent]string{
	IntentOther:          "other",
	IntentAffirmative:    "affirmative",
	IntentNegative:       "negative",
	IntentModeDesign:     "mode_design",
	IntentModeEvaluate:   "mode_evaluate",
	IntentFinalize:       "finalize",
	IntentContinue:       "continue",
	IntentOptionEvaluate: "option_evaluate",
	IntentOptionGenerate: "option_generate",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// Keyword sets. Matching is case-insensitive on the whole trimmed message.
var (
	affirmativeWords = set("yes", "y", "yeah", "yep", "sure", "i do", "i have it")
	negativeWords    = set("no", "n", "nope", "nah", "i don't", "i do not", "i don't have it")
	finalizeWords    = set("finalize", "done", "finish")
	continueWords    = set("", "continue", "ok")
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Normalize lowercases, trims whitespace and strips trailing sentence punctuation.
func Normalize(message string) string {
	v := strings.ToLower(strings.TrimSpace(message))
	v = strings.TrimRight(v, ".!?")
	return strings.TrimSpace(v)
}

// Classify maps a raw message to an Intent. The keyword sets are disjoint, so
// the result does not depend on the order of the checks below.
func Classify(message string) Intent {
	v := Normalize(message)
	if _, ok := continueWords[v]; ok {
		return IntentContinue
	}
	if _, ok := affirmativeWords[v]; ok {
		return IntentAffirmative
	}
	if _, ok := negativeWords[v]; ok {
		return IntentNegative
	}
	if _, ok := finalizeWords[v]; ok {
		return IntentFinalize
	}
	switch v {
	case "design":
		return IntentModeDesign
	case "evaluate":
		return IntentModeEvaluate
	case "1":
		return IntentOptionEvaluate
	case "2":
		return IntentOptionGenerate
	}
	return IntentOther
}
