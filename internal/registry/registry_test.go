package registry

import (
	"io"
	"log/slog"
	"testing"
)

func newTestRegistry(findings []string) *Registry {
	return New(Options{
		KeyFindings: findings,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestInitializeCase_AssignsSystemAndPreCompletes(t *testing.T) {
	r := newTestRegistry(nil)

	res := r.InitializeCase("case-1", "Water pump dead. Voltage at terminals is 12.4V")
	if res.System != "water_pump" {
		t.Fatalf("system = %q, want water_pump", res.System)
	}
	if res.Procedure == nil {
		t.Fatal("procedure not resolved")
	}
	found := false
	for _, id := range res.PreCompletedSteps {
		if id == "wp_2" {
			found = true
		}
	}
	if !found {
		t.Errorf("pre-completed %v missing voltage step wp_2", res.PreCompletedSteps)
	}

	snap := r.Snapshot("case-1")
	if !snap.Assigned || snap.ProcedureSystem != "water_pump" {
		t.Errorf("snapshot = %+v, want assigned water_pump", snap)
	}
	for _, id := range res.PreCompletedSteps {
		if !snap.CompletedStepIDs[id] {
			t.Errorf("snapshot missing pre-completed step %s", id)
		}
	}
}

func TestInitializeCase_SystemIsSticky(t *testing.T) {
	r := newTestRegistry(nil)

	first := r.InitializeCase("case-1", "Water pump not working")
	if first.System != "water_pump" {
		t.Fatalf("first init system = %q", first.System)
	}

	// A later message naming a different system must not reassign.
	second := r.InitializeCase("case-1", "Furnace also broken")
	if second.System != "water_pump" {
		t.Errorf("re-init system = %q, want water_pump kept", second.System)
	}
	if snap := r.Snapshot("case-1"); snap.ProcedureSystem != "water_pump" {
		t.Errorf("snapshot system = %q, want water_pump", snap.ProcedureSystem)
	}
}

func TestInitializeCase_LegacyFallback(t *testing.T) {
	r := newTestRegistry(nil)

	res := r.InitializeCase("case-1", "Something is broken, checked the voltage already")
	if res.System != "" || res.Procedure != nil {
		t.Fatalf("unmatched complaint resolved to %q", res.System)
	}

	snap := r.Snapshot("case-1")
	if !snap.Assigned {
		t.Error("legacy case should still record the assignment decision")
	}
	if snap.ProcedureSystem != "" {
		t.Errorf("legacy case has system %q", snap.ProcedureSystem)
	}
	if len(snap.LegacyTopics) != 1 || snap.LegacyTopics[0] != "voltage" {
		t.Errorf("legacy topics = %v, want [voltage]", snap.LegacyTopics)
	}

	// Legacy mode is sticky too: a matching system in a later init attempt
	// does not upgrade the case.
	res = r.InitializeCase("case-1", "Actually it is the water pump")
	if res.System != "" {
		t.Errorf("legacy case upgraded to %q", res.System)
	}
}

func TestSnapshot_UnknownCase(t *testing.T) {
	r := newTestRegistry(nil)

	snap := r.Snapshot("nope")
	if snap.CaseID != "nope" || snap.Assigned || snap.ProcedureSystem != "" {
		t.Errorf("unknown case snapshot = %+v", snap)
	}
	if snap.CompletedStepIDs == nil || snap.UnableToVerifyIDs == nil {
		t.Error("snapshot sets must be non-nil")
	}

	// Reading must not materialize an entry.
	r.mu.RLock()
	_, ok := r.entries["nope"]
	r.mu.RUnlock()
	if ok {
		t.Error("Snapshot created an entry for an unknown case")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	r := newTestRegistry(nil)
	r.InitializeCase("case-1", "Water pump dead. Voltage at terminals is 12.4V")

	snap := r.Snapshot("case-1")
	snap.CompletedStepIDs["wp_5"] = true

	if r.Snapshot("case-1").CompletedStepIDs["wp_5"] {
		t.Error("mutating a snapshot leaked into registry state")
	}
}

func TestClear(t *testing.T) {
	r := newTestRegistry(nil)
	r.InitializeCase("case-1", "Water pump not working")
	r.Clear("case-1")

	snap := r.Snapshot("case-1")
	if snap.Assigned || snap.ProcedureSystem != "" || len(snap.CompletedStepIDs) != 0 {
		t.Errorf("cleared case retained state: %+v", snap)
	}

	// A fresh complaint can now resolve to a different system.
	if res := r.InitializeCase("case-1", "Furnace won't ignite"); res.System != "furnace" {
		t.Errorf("post-clear init system = %q, want furnace", res.System)
	}
}

func TestRestore(t *testing.T) {
	r := newTestRegistry(nil)

	ok := r.Restore(Snapshot{
		CaseID:            "case-1",
		Assigned:          true,
		ProcedureSystem:   "lp_gas",
		CompletedStepIDs:  map[string]bool{"lpg_1": true, "lpg_2": true},
		UnableToVerifyIDs: map[string]bool{"lpg_3": true},
		Pivoted:           true,
		PivotFinding:      "regulator diaphragm is ruptured",
	})
	if !ok {
		t.Fatal("restore into a fresh case rejected")
	}

	snap := r.Snapshot("case-1")
	if snap.ProcedureSystem != "lp_gas" || !snap.CompletedStepIDs["lpg_2"] || !snap.UnableToVerifyIDs["lpg_3"] {
		t.Errorf("restored snapshot = %+v", snap)
	}
	if pv := r.ShouldPivot("case-1"); !pv.Pivot || pv.Finding == "" {
		t.Errorf("restored pivot state = %+v", pv)
	}
}

func TestRestore_LiveStateWins(t *testing.T) {
	r := newTestRegistry(nil)
	r.InitializeCase("case-1", "Water pump not working")

	ok := r.Restore(Snapshot{
		CaseID:          "case-1",
		Assigned:        true,
		ProcedureSystem: "furnace",
	})
	if ok {
		t.Error("restore overwrote a live assigned case")
	}
	if snap := r.Snapshot("case-1"); snap.ProcedureSystem != "water_pump" {
		t.Errorf("system after rejected restore = %q", snap.ProcedureSystem)
	}
}
