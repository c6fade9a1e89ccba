package report

import (
	"context"
	"strings"
	"testing"

	"github.com/openlsm/nlconf/pkg/engine"
)

func TestReporter_AccumulatesWarnings(t *testing.T) {
	var sb strings.Builder
	rep := New(Options{Out: &sb})

	rep.Warnf("no domain dataset for grid %s", "0.9x1.25")
	rep.Warnf("no initial condition dataset matches simulation year %s", "1000")

	warnings := rep.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "0.9x1.25") {
		t.Errorf("expected the formatted message, got %q", warnings[0])
	}
	if !strings.Contains(sb.String(), "no domain dataset") {
		t.Error("expected the warning to be logged")
	}
}

func TestReporter_WarningsReturnsACopy(t *testing.T) {
	rep := New(Options{Silent: true})
	rep.Warnf("first")

	warnings := rep.Warnings()
	warnings[0] = "mutated"

	if rep.Warnings()[0] != "first" {
		t.Error("expected Warnings to return a copy")
	}
}

func TestReporter_CheckStrict(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		warn    bool
		wantErr bool
	}{
		{"strict with warnings", true, true, true},
		{"strict without warnings", true, false, false},
		{"lenient with warnings", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := New(Options{Strict: tt.strict, Silent: true})
			if tt.warn {
				rep.Warnf("using initial conditions for year %d", 1850)
			}
			err := rep.CheckStrict()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected strict mode to escalate the warning")
				}
				if !engine.IsValidation(err) {
					t.Errorf("expected a validation error, got %v", err)
				}
				if !strings.Contains(err.Error(), "1850") {
					t.Errorf("expected the first warning in the message, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected no escalation, got %v", err)
			}
		})
	}
}

func TestReporter_ContextRoundTrip(t *testing.T) {
	rep := New(Options{Silent: true})
	ctx := rep.WithContext(context.Background())

	if got := FromContext(ctx); got != rep {
		t.Error("expected the same reporter back from the context")
	}
}

func TestFromContext_MissingReporterIsQuiet(t *testing.T) {
	rep := FromContext(context.Background())
	if rep == nil {
		t.Fatal("expected a usable reporter even without one in the context")
	}

	// Must not panic, and warnings still accumulate.
	rep.Warnf("detached warning")
	if len(rep.Warnings()) != 1 {
		t.Error("expected the detached reporter to accumulate warnings")
	}
	if rep.RunID() != "detached" {
		t.Errorf("expected the detached run ID, got %q", rep.RunID())
	}
}

func TestReporter_RunIDsAreUnique(t *testing.T) {
	a := New(Options{Silent: true})
	b := New(Options{Silent: true})
	if a.RunID() == b.RunID() {
		t.Error("expected each invocation to get its own run ID")
	}
	if a.RunID() == "" {
		t.Error("expected a non-empty run ID")
	}
}
