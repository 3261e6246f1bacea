package roster

import (
	"strings"
	"testing"
)

func TestParseRoster(t *testing.T) {
	t.Parallel()

	input := `[
		{"id": "officer-1", "name": "Officer One", "badge": "B-1"},
		{"id": "officer-2", "name": "Officer Two", "status": "off-duty"}
	]`
	officers, err := ParseRoster(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRoster: %v", err)
	}
	if len(officers) != 2 {
		t.Fatalf("parsed %d officers, want 2", len(officers))
	}
	if officers[0].ID != "officer-1" || officers[0].Badge != "B-1" {
		t.Errorf("first officer = %+v", officers[0])
	}
	if officers[1].Status != StatusOffDuty {
		t.Errorf("second officer status = %q, want %q", officers[1].Status, StatusOffDuty)
	}
}

func TestParseRosterRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{"not json", "nope", "decode roster"},
		{"empty array", "[]", "roster is empty"},
		{"missing id", `[{"name": "No ID"}]`, "missing id"},
		{"duplicate id", `[{"id": "x"}, {"id": "x"}]`, "duplicate id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRoster(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestDefaultRoster(t *testing.T) {
	t.Parallel()

	officers := DefaultRoster()
	if len(officers) != 5 {
		t.Fatalf("default roster has %d officers, want 5", len(officers))
	}

	seen := make(map[string]bool)
	for _, o := range officers {
		if o.ID == "" || o.Name == "" {
			t.Errorf("officer missing id or name: %+v", o)
		}
		if seen[o.ID] {
			t.Errorf("duplicate id %s", o.ID)
		}
		seen[o.ID] = true
	}

	// one officer starts off-duty to exercise the availability filter
	var offDuty int
	for _, o := range officers {
		if o.Status == StatusOffDuty {
			offDuty++
		}
	}
	if offDuty != 1 {
		t.Errorf("off-duty officers = %d, want 1", offDuty)
	}
}
