package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Command", KeyCommand, "nim doc a.nim", Command("nim doc a.nim")},
		{"Mode", KeyMode, "docs", Mode("docs")},
		{"Stage", KeyStage, "website", Stage("website")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Section", KeySection, "project", Section("project")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s: key mismatch got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s: value mismatch got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Workers(4); a.Key != KeyWorkers || a.Value.Int64() != 4 {
		t.Fatalf("Workers attr wrong: %v", a)
	}
	if a := ExitCode(2); a.Key != KeyExitCode || a.Value.Int64() != 2 {
		t.Fatalf("ExitCode attr wrong: %v", a)
	}
	if a := JobIndex(7); a.Key != KeyJobIndex || a.Value.Int64() != 7 {
		t.Fatalf("JobIndex attr wrong: %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("DurationMS attr wrong: %v", a)
	}
}
