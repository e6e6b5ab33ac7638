package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"askseba/backend/internal/matching"
)

func writeRecords(t *testing.T, records []Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "perfumes.json")
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRecordToMatchingSafetyFlag(t *testing.T) {
	safe := true
	unsafe := false

	tests := []struct {
		name     string
		isSafe   *bool
		expected matching.SafetyFlag
	}{
		{"absent stays unknown", nil, matching.SafetyUnknown},
		{"true maps to safe", &safe, matching.SafetySafe},
		{"false maps to unsafe", &unsafe, matching.SafetyUnsafe},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := Record{ID: "p", Name: "P", IsSafe: tc.isSafe}
			if got := record.ToMatching().Safety; got != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, got)
			}
		})
	}
}

func TestRecordToMatchingDefaults(t *testing.T) {
	p := Record{ID: "p", Name: "P"}.ToMatching()
	if p.Status != "active" {
		t.Fatalf("expected default status active got %q", p.Status)
	}
	if p.Source != SourceLocal {
		t.Fatalf("expected default source local got %q", p.Source)
	}
	if p.Families == nil || p.Ingredients == nil || p.SymptomTriggers == nil {
		t.Fatal("slice fields must default to empty, not nil")
	}
}

func TestFallbackLoadsOnce(t *testing.T) {
	path := writeRecords(t, []Record{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{Name: "missing id, skipped"},
	})
	svc := NewService(nil, nil, path, 0)

	pool, err := svc.Fallback()
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 records got %d", len(pool))
	}
	if size := svc.fallbackSize(); size != 3 {
		t.Fatalf("expected raw fallback size 3 got %d", size)
	}
}

func TestFallbackMissingPath(t *testing.T) {
	svc := NewService(nil, nil, "", 0)
	if _, err := svc.Fallback(); err == nil {
		t.Fatal("expected error for unconfigured fallback path")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Arabian Oud Oud Royal", "arabian-oud-oud-royal"},
		{"  Mixed_Case Name ", "mixed-case-name"},
		{"!!!", ""},
	}
	for _, tc := range tests {
		if got := slug(tc.raw); got != tc.expected {
			t.Fatalf("slug(%q): expected %q got %q", tc.raw, tc.expected, got)
		}
	}
}
