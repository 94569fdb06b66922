package enrich

import (
	"fmt"
	"strings"
)

// MaxPromptSamples caps the sample values embedded in a prompt.
const MaxPromptSamples = 5

const SystemPrompt = "You are a data analyst expert who classifies and describes data columns. Always respond with valid JSON."

const promptInstructions = `
Please provide a JSON response with the following fields:
1. "group": One of ["identifier", "numeric", "categorical", "datetime"]
   - identifier: unique identifiers like IDs, keys
   - numeric: numerical measurements or quantities
   - categorical: categories, labels, or classifications
   - datetime: dates, times, or timestamps
2. "description": A brief description of what this column represents (1-2 sentences)
3. "confidence": A confidence score between 0 and 1 indicating how confident you are about this classification and description

Respond ONLY with valid JSON in this exact format:
{
  "group": "category_name",
  "description": "column description",
  "confidence": 0.95
}
`

// BuildPrompt renders the user prompt for one column.
func BuildPrompt(column string, samples []string) string {
	var b strings.Builder
	b.WriteString("Analyze the following data column and provide classification and description.\n\n")
	fmt.Fprintf(&b, "Column Name: %s\n", column)
	if len(samples) > 0 {
		if len(samples) > MaxPromptSamples {
			samples = samples[:MaxPromptSamples]
		}
		fmt.Fprintf(&b, "Sample Values: %s\n", strings.Join(samples, ", "))
	}
	b.WriteString(promptInstructions)
	return b.String()
}
