package procedure

import "testing"

func TestRegisteredSystems(t *testing.T) {
	systems := RegisteredSystems()
	if len(systems) != 11 {
		t.Fatalf("expected 11 registered systems, got %d", len(systems))
	}

	seen := make(map[string]bool)
	for _, s := range systems {
		if seen[s] {
			t.Errorf("duplicate system key %q", s)
		}
		seen[s] = true
	}
}

func TestGet_AllSystems(t *testing.T) {
	for _, system := range RegisteredSystems() {
		t.Run(system, func(t *testing.T) {
			proc := Get(system)
			if proc == nil {
				t.Fatalf("Get(%q) returned nil", system)
			}
			if proc.System != system {
				t.Errorf("procedure system = %q, want %q", proc.System, system)
			}
			if len(proc.Steps) == 0 {
				t.Error("procedure has no steps")
			}

			ids := make(map[string]bool)
			for _, s := range proc.Steps {
				if ids[s.ID] {
					t.Errorf("duplicate step id %q", s.ID)
				}
				ids[s.ID] = true
			}

			if len(proc.Keywords) == 0 {
				t.Error("procedure has no detection keywords")
			}
		})
	}
}

func TestGet_UnknownSystem(t *testing.T) {
	if proc := Get("antigrav_drive"); proc != nil {
		t.Errorf("expected nil for unknown system, got %v", proc.System)
	}
	if proc := Get(""); proc != nil {
		t.Errorf("expected nil for empty system key, got %v", proc.System)
	}
}

func TestCatalog_EveryProcedureValidates(t *testing.T) {
	for _, system := range RegisteredSystems() {
		if err := Validate(Get(system)); err != nil {
			t.Errorf("procedure %q failed validation: %v", system, err)
		}
	}
}

func TestLPGasPrerequisiteChain(t *testing.T) {
	proc := Get("lp_gas")
	if proc == nil {
		t.Fatal("lp_gas procedure missing")
	}

	ignition := proc.Step("lpg_5")
	if ignition == nil {
		t.Fatal("lpg_5 missing")
	}
	if !containsID(ignition.Prerequisites, "lpg_4") {
		t.Errorf("lpg_5 prerequisites = %v, want to contain lpg_4", ignition.Prerequisites)
	}

	manualValve := proc.Step("lpg_4")
	if manualValve == nil {
		t.Fatal("lpg_4 missing")
	}
	if !containsID(manualValve.Prerequisites, "lpg_2") {
		t.Errorf("lpg_4 prerequisites = %v, want to contain lpg_2", manualValve.Prerequisites)
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
