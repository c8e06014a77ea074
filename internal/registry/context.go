package registry

import (
	"fmt"
	"strings"

	"github.com/protech-rv/protech/internal/procedure"
)

// BuildContext renders the text block the prompt-construction layer embeds
// on every turn. Cases with an assigned procedure get the procedure
// progress block; legacy cases get the answered-topics block.
func (r *Registry) BuildContext(caseID string) string {
	r.mu.RLock()
	e, ok := r.entries[caseID]
	r.mu.RUnlock()
	if !ok {
		return buildLegacyContext(nil)
	}

	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if snap.ProcedureSystem != "" {
		proc := procedure.Get(snap.ProcedureSystem)
		return procedure.BuildContext(proc, snap.CompletedStepIDs, snap.UnableToVerifyIDs)
	}
	return buildLegacyContext(snap.LegacyTopics)
}

// buildLegacyContext renders the fallback block for cases without a matched
// procedure: the deduplicated topics the technician already covered, so the
// chat layer does not re-ask them.
func buildLegacyContext(topics []string) string {
	var b strings.Builder
	b.WriteString("DIAGNOSTIC TOPIC TRACKING (no matched procedure)\n\n")
	b.WriteString("ALREADY ANSWERED:\n")
	if len(topics) == 0 {
		b.WriteString("- (none yet)\n")
	} else {
		for _, t := range topics {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	b.WriteString("\nDo NOT re-ask the technician about topics listed above.\n")
	return b.String()
}
