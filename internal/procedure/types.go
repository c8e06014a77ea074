package procedure

import (
	"regexp"
	"strings"
)

// Step is a single checklist item in a diagnostic procedure.
type Step struct {
	ID            string
	Description   string
	Prerequisites []string
	// Detect, when non-nil, lets the initial-message mapper pre-complete
	// this step from the technician's opening message.
	Detect *DetectRule
}

// Procedure is the ordered checklist for one RV subsystem. Step order is
// significant: the scheduler uses definition order as its tie-break.
type Procedure struct {
	System      string
	DisplayName string
	// Keywords drive system detection; matched case-insensitively as
	// substrings in catalog registration order.
	Keywords []string
	Steps    []Step
}

// DetectRule is a multi-signal match: a measurement value pattern plus at
// least one context keyword. Both signals are required so that a bare
// restatement of the complaint never completes a step.
type DetectRule struct {
	Value   *regexp.Regexp
	Context []string
}

// Matches reports whether the lowercased message satisfies both signals.
func (r *DetectRule) Matches(lower string) bool {
	if r == nil || r.Value == nil {
		return false
	}
	if !r.Value.MatchString(lower) {
		return false
	}
	for _, kw := range r.Context {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Step lookup by id; nil when absent.
func (p *Procedure) Step(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}
