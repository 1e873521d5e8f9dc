// Package prompt renders the instruction template sent to the language
// model. Build is a pure function of the preferences: no I/O, same input,
// same template.
package prompt

import (
	"strings"

	"study-rag/internal/models"
)

const basePrompt = `You are a patient study assistant helping a student learn from their textbook.
Use only the provided context to answer. If the context does not contain the answer, say so instead of guessing.

Context:
{context}

Question: {question}

Explain clearly and concisely, using language appropriate for a {complexityLevel} student with a {learningStyle} learning preference.`

// One instruction block per named learning style. Anything else, including
// "Balanced", gets no extra steering.
const (
	visualBlock      = `Describe diagrams, charts, or mental images the student can picture while learning this material.`
	auditoryBlock    = `Explain as if speaking aloud, using rhythm and repetition, and suggest how the student could talk through the ideas.`
	readWriteBlock   = `Structure the answer as organized written notes with clear definitions and lists the student can reread.`
	kinestheticBlock = `Suggest hands-on activities, experiments, or physical demonstrations that let the student work through the concept.`
)

const (
	examplesBlock  = `Include concrete examples that illustrate the concept.`
	analogiesBlock = `Include analogies that relate the concept to everyday experiences.`
	questionsBlock = `End with a few practice questions the student can use to test their understanding.`
)

// Build assembles the prompt template for the given preferences. The result
// still contains the {context}, {question}, {learningStyle} and
// {complexityLevel} placeholders; Fill substitutes them.
func Build(prefs models.Preferences) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	switch prefs.LearningStyle {
	case models.StyleVisual:
		b.WriteString("\n\n" + visualBlock)
	case models.StyleAuditory:
		b.WriteString("\n\n" + auditoryBlock)
	case models.StyleReadWrite:
		b.WriteString("\n\n" + readWriteBlock)
	case models.StyleKinesthetic:
		b.WriteString("\n\n" + kinestheticBlock)
	}

	if prefs.IncludeExamples {
		b.WriteString("\n\n" + examplesBlock)
	}
	if prefs.IncludeAnalogies {
		b.WriteString("\n\n" + analogiesBlock)
	}
	if prefs.IncludeQuestions {
		b.WriteString("\n\n" + questionsBlock)
	}
	return b.String()
}

// Fill substitutes the template placeholders with the retrieved context,
// the user question, and the preference values.
func Fill(template, context, question string, prefs models.Preferences) string {
	return strings.NewReplacer(
		"{context}", context,
		"{question}", question,
		"{learningStyle}", prefs.LearningStyle,
		"{complexityLevel}", prefs.ComplexityLevel,
	).Replace(template)
}
