package openai

import (
	"strings"
	"text/template"

	"github.com/aretw0/udlcoach/pkg/ports"
)

const persona = `You are a UDL (Universal Design for Learning) expert helping K-12 teachers create inclusive assessments.
Be transparent about your UDL reasoning and present options rather than prescriptive solutions.`

const slotsInstruction = `Extract the learning objectives, subject and grade level mentioned in the teacher's message.
Answer with a single JSON object with the string fields "objectives", "subject" and "grade".
Use the value "unspecified" for anything the message does not state. Do not guess.`

const alignmentInstruction = `Decide whether the assessment below is aligned with the UDL principles and assessment guidelines.
Answer with a single JSON object: {"verdict": "aligned"} or {"verdict": "not_aligned"}, and an optional "reason" string.
When in doubt answer "not_aligned".`

var generationTemplates = map[ports.InstructionKind]*template.Template{
	ports.KindAssessmentSet: template.Must(template.New("assessment_set").Parse(`Generate 4-5 diverse assessment options for:
- Learning Objectives: {{or .Context.LearningObjectives "not specified"}}
- Grade Level: {{or .Context.GradeLevel "K-12"}}
- Subject: {{or .Context.Subject "General"}}
{{- if .Context.AssessmentContent}}

The teacher's existing assessment, to use as a starting point:
"""
{{.Context.AssessmentContent}}
"""
{{- end}}

Respond in markdown with the following structure:

## Assessment Design Options

### Option 1: [Format Name]
**Format Description:** Clear description of the assessment format

**Implementation Guidance:** Step-by-step instructions for teachers

**UDL Rationale:** Why this option supports inclusive learning

**Adaptation Considerations:** How teachers can customize for their context

### Option 2: [Format Name]
[Continue with the same structure for each option]

Ensure all options:
- Maintain equivalent rigor and learning objectives
- Align with UDL Principle 3 (Multiple Means of Action and Expression)
- Include diverse formats (written, oral, visual, multimedia, collaborative)
- Support cultural responsiveness
- Build teacher capacity for inclusive design`)),

	ports.KindEvaluationReport: template.Must(template.New("evaluation_report").Parse(`Analyze the following assessment against UDL principles and provide detailed feedback.
{{- with .Context}}
Learning objectives: {{or .LearningObjectives "not specified"}}. Grade level: {{or .GradeLevel "not specified"}}. Subject: {{or .Subject "not specified"}}.
{{- end}}

Assessment:
"""
{{.Context.AssessmentContent}}
"""

Respond in markdown with the following structure:

## Assessment Analysis

### Strengths
- UDL-aligned elements that are already present

### Barriers Identified
- Specific barriers to accessibility and inclusion

### Improvement Suggestions
- Specific, actionable recommendations with UDL rationale
- Multiple options rather than prescriptive solutions

### Relevant UDL Principles
- Which UDL principles (1, 2, or 3) are most relevant to address

Focus on removing barriers rather than accommodating differences, cultural responsiveness, cognitive load, accessibility and equity.`)),

	ports.KindRefinement: template.Must(template.New("refinement").Parse(`Here is a set of assessment options you produced earlier:

"""
{{.PriorArtifact}}
"""

The teacher asks: {{.Instruction}}

Rewrite the complete set applying the request. Keep the same markdown structure and every option the teacher did not ask to change.`)),

	ports.KindRationale: template.Must(template.New("not_aligned_rationale").Parse(`The following assessment was judged not aligned with UDL principles.

Assessment:
"""
{{.Context.AssessmentContent}}
"""

Explain in markdown why it is not aligned: name the barriers it creates, the UDL principles and guidelines it misses, and two or three concrete first steps the teacher could take.`)),
}

// renderPrompt builds the user prompt for a generation request.
func renderPrompt(req ports.GenerateRequest) (string, error) {
	tmpl, ok := generationTemplates[req.Kind]
	if !ok {
		return "", errUnknownKind(req.Kind)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, req); err != nil {
		return "", err
	}
	return b.String(), nil
}

func systemPrompt(instruction string) string {
	return persona + "\n\n" + KnowledgeBase() + "\n" + instruction
}
