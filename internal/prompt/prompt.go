// Package prompt builds the text sent upstream and turns generated text back
// into a list of tasks.
package prompt

import "fmt"

const (
	taskInstruction   = "Break down this goal into 3–5 achievable tasks"
	formatInstruction = "Return either a bullet list or a JSON array of strings."
)

// Build returns the upstream prompt. An explicit prompt is used verbatim;
// otherwise an instruction is synthesized around goal. Both inputs are
// expected to be trimmed already.
func Build(goal, prompt string) string {
	if prompt != "" {
		return prompt
	}
	return ForGoal(goal)
}

// ForGoal synthesizes the task decomposition instruction for goal. The
// template is the same for every language; clients wanting a localized answer
// send their own prompt.
func ForGoal(goal string) string {
	return fmt.Sprintf("%s: %s. %s", taskInstruction, goal, formatInstruction)
}
