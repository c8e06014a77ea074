package registry

import "strings"

// PivotResult is the case-level pivot verdict exposed to the report builder.
type PivotResult struct {
	Pivot   bool   `json:"pivot"`
	Finding string `json:"finding,omitempty"`
}

// ShouldPivot reports whether a key finding has been observed on any message
// processed for the case. The flag is sticky: once set it never clears
// outside of Clear, which is what lets the external report builder justify
// skipping the remaining checklist.
func (r *Registry) ShouldPivot(caseID string) PivotResult {
	r.mu.RLock()
	e, ok := r.entries[caseID]
	r.mu.RUnlock()
	if !ok {
		return PivotResult{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return PivotResult{Pivot: e.pivoted, Finding: e.pivotFinding}
}

// DetectKeyFinding scans a message for any of the configured high-severity
// finding phrases. On a match it returns the sentence containing the phrase,
// trimmed, so the captured finding carries its context; non-matching
// messages return ("", false).
func DetectKeyFinding(message string, findings []string) (string, bool) {
	lower := strings.ToLower(message)
	for _, phrase := range findings {
		idx := strings.Index(lower, strings.ToLower(phrase))
		if idx < 0 {
			continue
		}
		return sentenceAround(message, idx), true
	}
	return "", false
}

// scanFindingLocked records the first key finding seen for the entry.
// Returns the finding and whether this call performed the one-way pivot
// transition. Caller holds e.mu.
func (r *Registry) scanFindingLocked(e *entry, message string) (string, bool) {
	if e.pivoted {
		return e.pivotFinding, false
	}
	finding, ok := DetectKeyFinding(message, r.findings)
	if !ok {
		return "", false
	}
	e.pivoted = true
	e.pivotFinding = finding
	return finding, true
}

// sentenceAround extracts the sentence of message that contains byte offset
// idx, using sentence punctuation and newlines as boundaries.
func sentenceAround(message string, idx int) string {
	start := 0
	for i := idx; i > 0; i-- {
		if isSentenceBoundary(message[i-1]) {
			start = i
			break
		}
	}
	end := len(message)
	for i := idx; i < len(message); i++ {
		if isSentenceBoundary(message[i]) {
			end = i
			break
		}
	}
	return strings.TrimSpace(message[start:end])
}

func isSentenceBoundary(c byte) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}
