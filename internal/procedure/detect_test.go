package procedure

import "testing"

func TestDetectSystem_CanonicalComplaints(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Water pump not working", "water_pump"},
		{"LP gas system issue", "lp_gas"},
		{"Furnace won't ignite", "furnace"},
		{"AC not cooling", "roof_ac"},
		{"Fridge not cooling", "refrigerator"},
		{"Slide-out won't extend", "slide_out"},
		{"Leveling system not working", "leveling"},
		{"Inverter not working", "inverter_converter"},
		{"12V lights not working", "electrical_12v"},
		{"120V outlet not working", "electrical_ac"},
		{"TV won't turn on", "consumer_appliance"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := DetectSystem(tt.message); got != tt.want {
				t.Errorf("DetectSystem(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectSystem_NoMatch(t *testing.T) {
	tests := []string{
		"Warp drive malfunction",
		"Something is broken",
		"",
		"The customer is unhappy",
	}

	for _, msg := range tests {
		if got := DetectSystem(msg); got != "" {
			t.Errorf("DetectSystem(%q) = %q, want no match", msg, got)
		}
	}
}

func TestDetectSystem_CaseInsensitive(t *testing.T) {
	if got := DetectSystem("WATER PUMP completely dead"); got != "water_pump" {
		t.Errorf("uppercase complaint: got %q, want water_pump", got)
	}
}

func TestDetectSystem_CatalogOrderTieBreak(t *testing.T) {
	// A message naming two systems resolves to the earlier registration.
	if got := DetectSystem("Water pump and furnace both acting up"); got != "water_pump" {
		t.Errorf("multi-system complaint: got %q, want water_pump", got)
	}
}
