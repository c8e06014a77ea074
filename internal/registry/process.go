package registry

import (
	"regexp"
	"strings"

	"github.com/protech-rv/protech/internal/procedure"
)

// TurnUpdate reports what a processed message changed.
type TurnUpdate struct {
	CompletedStepIDs []string `json:"completed_step_ids,omitempty"`
	UnableStepIDs    []string `json:"unable_step_ids,omitempty"`
	Topics           []string `json:"topics,omitempty"`
	Pivoted          bool     `json:"pivoted"`
	Finding          string   `json:"finding,omitempty"`
}

// confirmation phrases that indicate the technician performed the scheduled
// check. Deliberately narrow: the system favors under-completion, since the
// completed set only ever grows.
var confirmationPhrase = regexp.MustCompile(`\b(yes|done|did that|checked|verified|confirmed|tested|completed|complete|looks good|all good|good to go|reads|measured|no issues)\b`)

// unableToVerify phrases indicating the check could not be performed.
var unablePhrases = []string{
	"can't check", "cannot check", "can't verify", "cannot verify",
	"can't test", "cannot test", "unable to", "couldn't", "no way to",
	"not able to", "don't have a meter", "can't get to", "no access",
}

// legacyTopicWords is the keyword set for topic extraction in legacy mode.
var legacyTopicWords = []string{
	"voltage", "ground", "pressure", "propane", "leak", "fuse", "breaker",
	"battery", "thermostat", "filter", "continuity", "amperage", "polarity",
	"regulator", "igniter", "compressor", "connector", "fan",
}

// ProcessUserMessage applies the step-completion heuristics to a follow-up
// technician message. With an assigned procedure the heuristics are
// evaluated against the current next step only, never the whole checklist:
// a step is marked unable-to-verify when the message says the check could
// not be performed, and completed when the message answers it. Legacy cases
// accumulate deduplicated topics instead. Every message is also scanned for
// key findings regardless of mode.
func (r *Registry) ProcessUserMessage(caseID, message string) TurnUpdate {
	e := r.touch(caseID)
	e.mu.Lock()
	defer e.mu.Unlock()

	var update TurnUpdate
	if finding, transitioned := r.scanFindingLocked(e, message); transitioned {
		update.Finding = finding
		r.logger.Info("pivot detected", "case_id", caseID, "finding", finding)
	}
	update.Pivoted = e.pivoted

	if e.system == "" {
		for _, topic := range ExtractTopics(message) {
			if !e.legacyTopics[topic] {
				e.legacyTopics[topic] = true
				update.Topics = append(update.Topics, topic)
			}
		}
		return update
	}

	proc := procedure.Get(e.system)
	next := procedure.NextStep(proc, e.completed, e.unable)
	if next == nil {
		return update
	}

	lower := strings.ToLower(message)
	switch {
	case DetectUnableToVerify(lower):
		e.unable[next.ID] = true
		update.UnableStepIDs = append(update.UnableStepIDs, next.ID)
	case stepAnswered(lower, next):
		e.completed[next.ID] = true
		update.CompletedStepIDs = append(update.CompletedStepIDs, next.ID)
	}
	return update
}

// stepAnswered reports whether a lowercased message answers the step: either
// its detection rule fires (a real reading for this step) or the technician
// explicitly confirms having performed the check.
func stepAnswered(lower string, step *procedure.Step) bool {
	if step.Detect.Matches(lower) {
		return true
	}
	return confirmationPhrase.MatchString(lower)
}

// DetectUnableToVerify reports whether a lowercased message indicates the
// scheduled check could not be performed.
func DetectUnableToVerify(lower string) bool {
	for _, p := range unablePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ExtractTopics pulls the known diagnostic topic tags out of a free-text
// message. Used only in legacy mode, where no procedure structures the
// conversation, so the chat layer can avoid re-asking answered questions.
func ExtractTopics(message string) []string {
	lower := strings.ToLower(message)
	var topics []string
	for _, w := range legacyTopicWords {
		if strings.Contains(lower, w) {
			topics = append(topics, w)
		}
	}
	return topics
}
