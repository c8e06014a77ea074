package procedure

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		proc    Procedure
		wantErr string
	}{
		{
			name: "valid linear chain",
			proc: Procedure{
				System: "test",
				Steps: []Step{
					{ID: "a"},
					{ID: "b", Prerequisites: []string{"a"}},
				},
			},
		},
		{
			name:    "no steps",
			proc:    Procedure{System: "test"},
			wantErr: "no steps",
		},
		{
			name:    "empty system key",
			proc:    Procedure{Steps: []Step{{ID: "a"}}},
			wantErr: "empty system key",
		},
		{
			name: "duplicate step id",
			proc: Procedure{
				System: "test",
				Steps:  []Step{{ID: "a"}, {ID: "a"}},
			},
			wantErr: "duplicate step id",
		},
		{
			name: "dangling prerequisite",
			proc: Procedure{
				System: "test",
				Steps: []Step{
					{ID: "a"},
					{ID: "b", Prerequisites: []string{"missing"}},
				},
			},
			wantErr: "dangling prerequisite",
		},
		{
			name: "self-referential prerequisite",
			proc: Procedure{
				System: "test",
				Steps: []Step{
					{ID: "a"},
					{ID: "b", Prerequisites: []string{"b"}},
				},
			},
			wantErr: "self-referential",
		},
		{
			name: "no reachable start",
			proc: Procedure{
				System: "test",
				Steps: []Step{
					{ID: "a", Prerequisites: []string{"b"}},
					{ID: "b", Prerequisites: []string{"a"}},
				},
			},
			wantErr: "no step without prerequisites",
		},
		{
			name: "prerequisite cycle",
			proc: Procedure{
				System: "test",
				Steps: []Step{
					{ID: "start"},
					{ID: "a", Prerequisites: []string{"c"}},
					{ID: "b", Prerequisites: []string{"a"}},
					{ID: "c", Prerequisites: []string{"b"}},
				},
			},
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.proc)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
