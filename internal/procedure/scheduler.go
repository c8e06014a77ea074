package procedure

// NextStep returns the first step, in definition order, that is neither
// completed nor marked unable-to-verify and whose prerequisites are all
// completed. Returns nil when the procedure is exhausted.
//
// An unable-to-verify step is removed from candidacy but does NOT satisfy
// the prerequisites of its dependents: only completion unblocks. This is
// the reference behavior and must not change without product sign-off.
func NextStep(p *Procedure, completed, unableToVerify map[string]bool) *Step {
	if p == nil {
		return nil
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		if completed[s.ID] || unableToVerify[s.ID] {
			continue
		}
		if prerequisitesMet(s, completed) {
			return s
		}
	}
	return nil
}

func prerequisitesMet(s *Step, completed map[string]bool) bool {
	for _, pre := range s.Prerequisites {
		if !completed[pre] {
			return false
		}
	}
	return true
}
