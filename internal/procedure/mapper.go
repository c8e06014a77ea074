package procedure

import (
	"strings"
)

// MapInitialMessage scans the technician's opening message against each
// step's detection rule and returns the ids of steps it answers, in
// definition order. The function performs no mutation; the caller applies
// the result to case state.
//
// Guard: a message carrying no measurement at all maps to at most one step.
// The ceiling prevents a vague complaint from cascading false completions
// through the prerequisite graph; the system prefers under-completion.
func MapInitialMessage(message string, p *Procedure) []string {
	if p == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	lower := strings.ToLower(message)

	var matched []string
	for i := range p.Steps {
		if p.Steps[i].Detect.Matches(lower) {
			matched = append(matched, p.Steps[i].ID)
		}
	}

	if len(matched) > 1 && !hasMeasurement(lower) {
		matched = matched[:1]
	}
	return matched
}

// hasMeasurement reports whether the message contains any numeric reading.
func hasMeasurement(lower string) bool {
	return strings.ContainsAny(lower, "0123456789")
}
