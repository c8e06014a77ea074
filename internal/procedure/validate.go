package procedure

import "fmt"

// Validate checks a procedure definition for static-data defects: duplicate
// step ids, dangling prerequisite references, prerequisite cycles, and the
// absence of a reachable start step. Catalog construction fails fast on any
// of these; they are never request-time conditions.
func Validate(p *Procedure) error {
	if p.System == "" {
		return fmt.Errorf("empty system key")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("no steps defined")
	}

	ids := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s.ID == "" {
			return fmt.Errorf("step with empty id")
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate step id %q", s.ID)
		}
		ids[s.ID] = true
	}

	hasStart := false
	for _, s := range p.Steps {
		if len(s.Prerequisites) == 0 {
			hasStart = true
		}
		for _, pre := range s.Prerequisites {
			if !ids[pre] {
				return fmt.Errorf("step %q: dangling prerequisite %q", s.ID, pre)
			}
			if pre == s.ID {
				return fmt.Errorf("step %q: self-referential prerequisite", s.ID)
			}
		}
	}
	if !hasStart {
		return fmt.Errorf("no step without prerequisites")
	}

	if cycle := findCycle(p); cycle != "" {
		return fmt.Errorf("prerequisite cycle through step %q", cycle)
	}
	return nil
}

// findCycle runs a three-color DFS over the prerequisite edges and returns
// the id of a step on a cycle, or "" when the graph is a DAG.
func findCycle(p *Procedure) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(p.Steps))

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		step := p.Step(id)
		for _, pre := range step.Prerequisites {
			switch color[pre] {
			case gray:
				return pre
			case white:
				if c := visit(pre); c != "" {
					return c
				}
			}
		}
		color[id] = black
		return ""
	}

	for _, s := range p.Steps {
		if color[s.ID] == white {
			if c := visit(s.ID); c != "" {
				return c
			}
		}
	}
	return ""
}
