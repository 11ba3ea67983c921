package scenario

import (
	"strings"
	"testing"

	"keel/kernel"
)

func TestParseAppliesDefaults(t *testing.T) {
	sc, err := Parse([]byte(`
tasks:
  - name: w
    behavior: sleeper
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sc.Hz != 100 {
		t.Fatalf("Hz = %d, want default 100", sc.Hz)
	}
	if sc.ArenaKB != 64 {
		t.Fatalf("ArenaKB = %d, want default 64", sc.ArenaKB)
	}
	if sc.Tasks[0].Period != 10 {
		t.Fatalf("Period = %d, want default 10", sc.Tasks[0].Period)
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"no tasks", `hz: 50`, "no tasks"},
		{"unknown behavior", "tasks:\n  - behavior: dance\n", "unknown behavior"},
		{"unknown priority", "tasks:\n  - behavior: spin\n    priority: high\n", "unknown priority"},
		{"consumer without group", "tasks:\n  - behavior: consumer\n", "needs a group"},
		{"producer without group", "tasks:\n  - behavior: producer\n", "needs a group"},
		{"unknown key", "frequency: 10\ntasks:\n  - behavior: spin\n", "frequency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatalf("Parse() error = nil, want %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Parse() error = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestPrioMapping(t *testing.T) {
	cases := []struct {
		in   string
		want kernel.Priority
	}{
		{"", kernel.PriorityNormal},
		{"normal", kernel.PriorityNormal},
		{"critical", kernel.PriorityCritical},
		{"low", kernel.PriorityLow},
	}
	for _, tc := range cases {
		task := Task{Priority: tc.in}
		got, err := task.Prio()
		if err != nil {
			t.Fatalf("Prio(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Prio(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDefaultScenarioIsValid(t *testing.T) {
	sc := Default()
	for _, task := range sc.Tasks {
		if _, err := task.Prio(); err != nil {
			t.Fatalf("default scenario: %v", err)
		}
	}
	if len(sc.Tasks) == 0 {
		t.Fatal("default scenario has no tasks")
	}
}
