package dialogue

import (
	"fmt"
	"sort"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// Action is the side effect executed when an edge is taken.
type Action int

const (
	ActPromptMode Action = iota
	ActEnterDesign
	ActEnterEvaluate
	ActCaptureSlots
	ActAskForAssessment
	ActStoreAssessment
	ActClassifyAlignment
	ActStoreAndClassify
	ActGenerateAssessment
	ActEvaluationReport
	ActRationale
	ActClose
	ActFinalize
	ActReprompt
	ActRefine
	ActRestart
	ActRestartPrompt
)

var actionNames = [...]string{
	ActPromptMode:         "prompt_mode",
	ActEnterDesign:        "enter_design",
	ActEnterEvaluate:      "enter_evaluate",
	ActCaptureSlots:       "capture_slots",
	ActAskForAssessment:   "ask_for_assessment",
	ActStoreAssessment:    "store_assessment",
	ActClassifyAlignment:  "classify_alignment",
	ActStoreAndClassify:   "store_and_classify",
	ActGenerateAssessment: "generate_assessment",
	ActEvaluationReport:   "evaluation_report",
	ActRationale:          "rationale",
	ActClose:              "close",
	ActFinalize:           "finalize",
	ActReprompt:           "reprompt",
	ActRefine:             "refine",
	ActRestart:            "restart",
	ActRestartPrompt:      "restart_prompt",
}

func (a Action) String() string {
	if int(a) >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Transition is one edge of the graph.
// To is the target node; alignment actions leave it empty because the
// classifier verdict picks between EvaluateAligned and EvaluateNotAligned.
type Transition struct {
	To     domain.State
	Action Action
}

// Any is the wildcard intent row used when no specific intent matches.
const Any domain.Intent = -1

// Table is the state × intent → transition relation.
// Every state carries an Any row, so lookups never fall through.
var Table = map[domain.State]map[domain.Intent]Transition{
	domain.StateStart: {
		domain.IntentModeDesign:   {To: domain.StateDesignMode, Action: ActEnterDesign},
		domain.IntentModeEvaluate: {To: domain.StateEvaluateMode, Action: ActEnterEvaluate},
		Any:                       {To: domain.StateStart, Action: ActPromptMode},
	},
	domain.StateDesignMode: {
		Any: {To: domain.StateDesignInputReceived, Action: ActCaptureSlots},
	},
	domain.StateDesignInputReceived: {
		domain.IntentAffirmative: {To: domain.StateDesignAssessmentYes, Action: ActAskForAssessment},
		Any:                      {To: domain.StateQualityCheck, Action: ActGenerateAssessment},
	},
	domain.StateDesignAssessmentYes: {
		Any: {To: domain.StateDesignAssessmentReceived, Action: ActStoreAssessment},
	},
	domain.StateDesignAssessmentReceived: {
		domain.IntentOptionEvaluate: {Action: ActClassifyAlignment},
		Any:                         {To: domain.StateQualityCheck, Action: ActGenerateAssessment},
	},
	domain.StateEvaluateMode: {
		Any: {To: domain.StateEvaluateInputReceived, Action: ActCaptureSlots},
	},
	domain.StateEvaluateInputReceived: {
		Any: {Action: ActStoreAndClassify},
	},
	domain.StateEvaluateAligned: {
		Any: {To: domain.StateEnd, Action: ActEvaluationReport},
	},
	domain.StateEvaluateNotAligned: {
		domain.IntentAffirmative: {To: domain.StateQualityCheck, Action: ActGenerateAssessment},
		Any:                      {To: domain.StateProvideNotAlignedReason, Action: ActRationale},
	},
	domain.StateProvideNotAlignedReason: {
		Any: {To: domain.StateEnd, Action: ActClose},
	},
	domain.StateQualityCheck: {
		domain.IntentFinalize: {To: domain.StateEnd, Action: ActFinalize},
		domain.IntentContinue: {To: domain.StateQualityCheck, Action: ActReprompt},
		Any:                   {To: domain.StateQualityCheck, Action: ActRefine},
	},
	domain.StateEnd: {
		domain.IntentModeDesign:   {To: domain.StateStart, Action: ActRestart},
		domain.IntentModeEvaluate: {To: domain.StateStart, Action: ActRestart},
		Any:                       {To: domain.StateEnd, Action: ActRestartPrompt},
	},
}

// Lookup returns the edge taken from state on intent.
func Lookup(state domain.State, intent domain.Intent) (Transition, error) {
	row, ok := Table[state]
	if !ok {
		return Transition{}, fmt.Errorf("%w: no transitions from %q", domain.ErrInvalidTransition, state)
	}
	if t, ok := row[intent]; ok {
		return t, nil
	}
	return row[Any], nil
}

// Edge is one resolved row of Table, used for rendering the graph.
type Edge struct {
	From   domain.State
	To     domain.State
	Intent string // "*" for the wildcard row
	Action Action
}

// Edges flattens Table in States order, specific intents before the wildcard.
// Alignment rows expand to both verdict targets and restarts point at the
// node the re-dispatched message lands on.
func Edges() []Edge {
	var edges []Edge
	for _, from := range domain.States {
		row := Table[from]
		intents := make([]domain.Intent, 0, len(row))
		for intent := range row {
			if intent != Any {
				intents = append(intents, intent)
			}
		}
		sort.Slice(intents, func(i, j int) bool { return intents[i] < intents[j] })
		intents = append(intents, Any)

		for _, intent := range intents {
			t := row[intent]
			label := "*"
			if intent != Any {
				label = intent.String()
			}
			switch t.Action {
			case ActClassifyAlignment, ActStoreAndClassify:
				edges = append(edges,
					Edge{From: from, To: domain.StateEvaluateAligned, Intent: label, Action: t.Action},
					Edge{From: from, To: domain.StateEvaluateNotAligned, Intent: label, Action: t.Action},
				)
			case ActRestart:
				to := t.To
				if next, err := Lookup(t.To, intent); err == nil {
					to = next.To
				}
				edges = append(edges, Edge{From: from, To: to, Intent: label, Action: t.Action})
			default:
				edges = append(edges, Edge{From: from, To: t.To, Intent: label, Action: t.Action})
			}
		}
	}
	return edges
}
