package procedure

import (
	"fmt"
	"strings"
)

// antiInvention is appended to every procedure context block. The consumer
// is an LLM-driven chat layer; without this line it will happily invent
// checks that are not in the catalog.
const antiInvention = "Do NOT invent diagnostic steps outside this procedure. Work only the steps listed above, in the scheduled order."

// BuildContext renders the procedure progress block consumed by the
// prompt-construction layer. Output is deterministic for fixed inputs:
// header with the display name, one line per step in definition order
// ([DONE]/[SKIP] tagged, pending steps untagged), a progress counter, the
// next required step from the scheduler, and the anti-invention instruction.
func BuildContext(p *Procedure, completed, unableToVerify map[string]bool) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACTIVE DIAGNOSTIC PROCEDURE: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "System: %s\n\n", p.System)

	done := 0
	for i := range p.Steps {
		s := &p.Steps[i]
		switch {
		case completed[s.ID]:
			done++
			fmt.Fprintf(&b, "[DONE] %s: %s\n", s.ID, s.Description)
		case unableToVerify[s.ID]:
			fmt.Fprintf(&b, "[SKIP] %s: %s\n", s.ID, s.Description)
		default:
			fmt.Fprintf(&b, "  %s: %s\n", s.ID, s.Description)
		}
	}

	fmt.Fprintf(&b, "\nProgress: %d/%d\n", done, len(p.Steps))

	if next := NextStep(p, completed, unableToVerify); next != nil {
		fmt.Fprintf(&b, "NEXT REQUIRED STEP: %s\n", next.ID)
	} else {
		b.WriteString("ALL REQUIRED STEPS ADDRESSED. Move to findings and the repair recommendation.\n")
	}

	b.WriteString(antiInvention)
	b.WriteString("\n")
	return b.String()
}
