// ABOUTME: Deterministic text assembly for embeddings and grounded prompts
// ABOUTME: Canonical record text and the analyst prompt built from retrieved records
package core

import (
	"fmt"
	"strings"

	"github.com/harper/urban-lens/internal/models"
)

const analystPersona = `You are an urban analyst assessing progress toward the Sustainable Development Goals for cities: safety, sanitation, flooding risk, and infrastructure.
Answer strictly from the image evidence you are given. Cite locations where relevant.
Never invent facts, locations, or conditions that the evidence does not show.`

// CanonicalText renders a record as the fixed template that gets embedded.
// Records with the same tags and location wording land close together even
// when their captions are phrased differently.
func CanonicalText(meta models.Metadata) string {
	return fmt.Sprintf("Caption: %s\nTags: %s\nLocation: %s",
		meta.Caption, strings.Join(meta.Tags, ", "), meta.Location)
}

// BuildPrompt assembles the grounding prompt for question from the retrieved
// elements, in retrieval order
func BuildPrompt(question string, elements []models.ScoredElement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "The following %d image records were retrieved as evidence for this question.\n", len(elements))

	for i, e := range elements {
		fmt.Fprintf(&b, "\nRecord %d\n", i+1)
		fmt.Fprintf(&b, "Location: %s\n", e.Metadata.Location)
		fmt.Fprintf(&b, "Caption: %s\n", e.Metadata.Caption)
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Metadata.Tags, ", "))
	}

	b.WriteString("\nAnswer the question using only the evidence in these records. ")
	b.WriteString("If the records do not contain enough information, say so.")
	return b.String()
}
