package quizgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You are a programming instructor writing a short assessment about a piece of learning content.

Rules:
- Base every question on the provided content. Do not invent facts the content does not support.
- Multiple-choice items have one correct option. Distractors should reflect common misconceptions.
- Code challenges ask the learner to write a small program that prints a result to standard output.
  The expected output must be exactly what a correct solution prints, with no explanation.
- Respond with a JSON array of items and nothing else.`

// buildUserMessage embeds the source text and the item contract.
func buildUserMessage(text string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write exactly %d multiple-choice items and %d code challenges in %s.\n\n",
		cfg.MultipleChoiceCount, cfg.CodeCount, cfg.Language)

	b.WriteString("Each element of the array is one of:\n")
	fmt.Fprintf(&b, `- {"type": "multiple_choice", "id": string, "question": string, "options": [string, ...], "correctIndex": integer, "points": %d}`+"\n",
		cfg.MultipleChoicePoints)
	fmt.Fprintf(&b, `- {"type": "code", "id": string, "question": string, "initialCode": string, "expectedOutput": string, "points": %d}`+"\n",
		cfg.CodePoints)

	if def, err := json.Marshal(ItemSchema.Definition); err == nil {
		b.WriteString("\nJSON Schema for a single element:\n")
		b.Write(def)
		b.WriteString("\n")
	}

	b.WriteString("\nContent:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n")

	return b.String()
}
