package warden

import (
	"reflect"
	"testing"
)

func TestExtractCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "bare calls",
			source: `hack("a"); grow("b");`,
			want:   []string{"hack", "grow"},
		},
		{
			name:   "member access roots and properties",
			source: `hacknet.purchaseNode();`,
			want:   []string{"hacknet", "purchaseNode"},
		},
		{
			name:   "browser global",
			source: `window.alert("done");`,
			want:   []string{"window", "alert"},
		},
		{
			name:   "duplicates collapse",
			source: `hack("a"); hack("b"); hack("c");`,
			want:   []string{"hack"},
		},
		{
			name:   "first-seen order",
			source: `scan("home"); hack("a"); scan("b"); exec("w.gs");`,
			want:   []string{"scan", "hack", "exec"},
		},
		{
			name:   "calls inside loops and branches",
			source: `while (x > 0) { if (ready) { await weaken("a"); } else { grow("a"); } }`,
			want:   []string{"weaken", "grow"},
		},
		{
			name:   "call arguments are walked",
			source: `exec(pick(), 1);`,
			want:   []string{"exec", "pick"},
		},
		{
			name:   "no references",
			source: `let x = 1 + 2;`,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCapabilities(parseSource(t, tt.source))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractOverApproximates(t *testing.T) {
	// Local helpers defined in the script are collected too; pricing drops
	// them because no catalog table knows their names.
	source := `let helper = function(n) { return n * 2; };
helper(21);`
	got := ExtractCapabilities(parseSource(t, source))

	found := false
	for _, name := range got {
		if name == "helper" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected local helper in extraction, got %v", got)
	}
}
