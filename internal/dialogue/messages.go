package dialogue

import (
	"fmt"
	"strings"

	"github.com/aretw0/udlcoach/pkg/domain"
)

const modeSelectionPrompt = `# Welcome to the UDL Assessment Assistant!

I help you build more inclusive assessments using Universal Design for Learning principles.

Type **design** to create new UDL-aligned assessment options, or **evaluate** to check an existing assessment against UDL principles.`

const designIntro = `Let's design an assessment together.

Tell me about your **learning objectives**, the **grade level** and the **subject**. A sentence or two is enough.`

const evaluateIntro = `Let's evaluate an assessment.

First, tell me about the **learning objectives**, **grade level** and **subject** it is meant for.`

const shareAssessmentPrompt = `Please paste the text of your assessment here, or upload the document.`

const assessmentMenuPrompt = `Thanks, I have your assessment. What would you like to do next?

1. Evaluate it against UDL principles
2. Generate new UDL-aligned assessment options`

const alignedMessage = `Good news: this assessment appears to be **aligned** with UDL principles.

Send any message to receive the full evaluation report.`

const notAlignedMessage = `This assessment is **not yet aligned** with UDL principles.

Would you like me to generate improved, UDL-aligned assessment options? (yes/no)`

const refinementPrompt = `---
Tell me what to change (for example "add captions to option 2"), or type **finalize** when you are happy with the set.`

const closingMessage = `Thanks for working through this evaluation.

Type **design** or **evaluate** to start a new conversation.`

const restartPrompt = `This conversation is complete. Type **design** or **evaluate** to start again.`

func slotsPrompt(c domain.ContextStore) string {
	var b strings.Builder
	b.WriteString("Here is what I understood:\n\n")
	fmt.Fprintf(&b, "- **Learning objectives:** %s\n", orUnspecified(c.LearningObjectives))
	fmt.Fprintf(&b, "- **Grade level:** %s\n", orUnspecified(c.GradeLevel))
	fmt.Fprintf(&b, "- **Subject:** %s\n", orUnspecified(c.Subject))
	return b.String()
}

func existingAssessmentPrompt(c domain.ContextStore) string {
	return slotsPrompt(c) + "\nDo you already have an assessment you would like to start from? (yes/no)"
}

func evaluateAssessmentPrompt(c domain.ContextStore) string {
	return slotsPrompt(c) + "\n" + shareAssessmentPrompt
}

func withFooter(body, footer string) string {
	return strings.TrimSpace(body) + "\n\n" + footer
}

func orUnspecified(v string) string {
	if v == "" {
		return "_not specified_"
	}
	return v
}
