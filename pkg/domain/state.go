package domain

// State is a node of the dialogue graph.
type State string

const (
	StateStart                    State = "start"
	StateDesignMode               State = "design_mode"
	StateDesignInputReceived      State = "design_input_received"
	StateDesignAssessmentYes      State = "design_assessment_yes"
	StateDesignAssessmentReceived State = "design_assessment_received"
	StateEvaluateMode             State = "evaluate_mode"
	StateEvaluateInputReceived    State = "evaluate_input_received"
	StateEvaluateAligned          State = "evaluate_aligned"
	StateEvaluateNotAligned       State = "evaluate_not_aligned"
	StateProvideNotAlignedReason  State = "provide_not_aligned_reason"
	StateQualityCheck             State = "quality_check_phase"
	StateEnd                      State = "end" // Sink state; only a mode keyword leaves it.
)

// States lists every node of the graph in declaration order.
var States = []State{
	StateStart,
	StateDesignMode,
	StateDesignInputReceived,
	StateDesignAssessmentYes,
	StateDesignAssessmentReceived,
	StateEvaluateMode,
	StateEvaluateInputReceived,
	StateEvaluateAligned,
	StateEvaluateNotAligned,
	StateProvideNotAlignedReason,
	StateQualityCheck,
	StateEnd,
}

// Valid reports whether s is a known node.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the sink state.
func (s State) Terminal() bool {
	return s == StateEnd
}

// Branch is the top-level conversational track.
type Branch string

const (
	BranchNone     Branch = "none"
	BranchDesign   Branch = "design"
	BranchEvaluate Branch = "evaluate"
)

// Valid reports whether b is a known branch.
func (b Branch) Valid() bool {
	switch b {
	case BranchNone, BranchDesign, BranchEvaluate:
		return true
	}
	return false
}

// branchGraph maps each branch to the nodes reachable while it is active.
// The design branch can enter the evaluation sub-flow (option "1"), so it
// shares the alignment nodes with the evaluate branch.
var branchGraph = map[Branch]map[State]bool{
	BranchNone: {
		StateStart: true,
	},
	BranchDesign: {
		StateDesignMode:               true,
		StateDesignInputReceived:      true,
		StateDesignAssessmentYes:      true,
		StateDesignAssessmentReceived: true,
		StateEvaluateAligned:          true,
		StateEvaluateNotAligned:       true,
		StateProvideNotAlignedReason:  true,
		StateQualityCheck:             true,
		StateEnd:                      true,
	},
	BranchEvaluate: {
		StateEvaluateMode:            true,
		StateEvaluateInputReceived:   true,
		StateEvaluateAligned:         true,
		StateEvaluateNotAligned:      true,
		StateProvideNotAlignedReason: true,
		StateQualityCheck:            true,
		StateEnd:                     true,
	},
}

// ValidFor reports whether s belongs to the graph of branch b.
func (s State) ValidFor(b Branch) bool {
	return branchGraph[b][s]
}
