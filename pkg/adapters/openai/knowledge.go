package openai

import (
	"fmt"
	"strings"
)

// Principle is one of the three UDL principles with its guidelines.
type Principle struct {
	Number      int
	Name        string
	Description string
	Guidelines  []string
}

// Principles is the UDL framework knowledge base embedded in every prompt.
var Principles = []Principle{
	{
		Number:      1,
		Name:        "Multiple Means of Engagement",
		Description: "Provide multiple ways for learners to engage with content and stay motivated",
		Guidelines: []string{
			"Provide options for recruiting interest",
			"Provide options for sustaining effort and persistence",
			"Provide options for self-regulation",
		},
	},
	{
		Number:      2,
		Name:        "Multiple Means of Representation",
		Description: "Present information and content in multiple ways",
		Guidelines: []string{
			"Provide options for perception",
			"Provide options for language and symbols",
			"Provide options for comprehension",
		},
	},
	{
		Number:      3,
		Name:        "Multiple Means of Action and Expression",
		Description: "Provide multiple ways for learners to act and express what they know",
		Guidelines: []string{
			"Provide options for physical action",
			"Provide options for expression and communication",
			"Provide options for executive functions",
		},
	},
}

// AssessmentGuidelines are the rubric items used for alignment and reports.
var AssessmentGuidelines = []string{
	"Ensure assessments measure learning objectives, not access barriers",
	"Provide multiple ways for students to demonstrate knowledge",
	"Use clear, accessible language and instructions",
	"Offer flexible timing and pacing options",
	"Include culturally responsive content and examples",
	"Provide scaffolding and support structures",
	"Allow for student choice in how to express learning",
}

// KnowledgeBase renders the framework as markdown for system prompts.
func KnowledgeBase() string {
	var b strings.Builder
	b.WriteString("UDL framework reference:\n")
	for _, p := range Principles {
		fmt.Fprintf(&b, "\nPrinciple %d: %s. %s.\n", p.Number, p.Name, p.Description)
		for _, g := range p.Guidelines {
			fmt.Fprintf(&b, "  - %s\n", g)
		}
	}
	b.WriteString("\nAssessment guidelines:\n")
	for _, g := range AssessmentGuidelines {
		fmt.Fprintf(&b, "  - %s\n", g)
	}
	return b.String()
}
