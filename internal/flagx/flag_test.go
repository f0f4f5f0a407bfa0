package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	planner := []string{"-d", "-l", "-e", "-x"}
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "planner.json", "-d", "trips.db"}, planner, []string{"-d", "trips.db"}},
		{"equals form", []string{"-l=debug", "-config=planner.json"}, planner, []string{"-l=debug"}},
		{"bool flag followed by flag", []string{"-x", "-d", "trips.db"}, planner, []string{"-x", "-d", "trips.db"}},
		{"flag at end", []string{"-e"}, planner, []string{"-e"}},
		{"unknown flags dropped", []string{"-y", "1", "positional"}, planner, []string{}},
		{"repeats kept in order", []string{"-c", "a.json", "-c", "b.json"}, []string{"-c"}, []string{"-c", "a.json", "-c", "b.json"}},
		{"value that looks like a flag", []string{"-config=--odd.json"}, []string{"-config"}, []string{"-config=--odd.json"}},
		{"empty", nil, planner, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FilterArgs(tt.args, tt.allowed)); diff != "" {
				t.Fatalf("FilterArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "planner.json", ConfigPath([]string{"-d", "trips.db", "-c", "planner.json"}))
	assert.Equal(t, "x.json", ConfigPath([]string{"-config=x.json"}))
	assert.Equal(t, "2.json", ConfigPath([]string{"-c", "1.json", "-config", "2.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "-l", "debug"}))
	assert.Empty(t, ConfigPath(nil))
}
