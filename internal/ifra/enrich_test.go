package ifra

import (
	"encoding/json"
	"os"
	"testing"

	"askseba/backend/internal/matching"
)

func tempTable(t *testing.T, value any) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "ifra-*.json")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return f.Name()
}

func testService(t *testing.T) *Service {
	t.Helper()
	table := map[string]Entry{
		"oakmoss":  {Safe: false, Warnings: []string{"restricted"}, Symptoms: []string{"itching"}},
		"bergamot": {Safe: false, Warnings: []string{"phototoxic"}, Symptoms: []string{"skin rash"}},
		"jasmine":  {Safe: true, Symptoms: []string{"sneeze"}},
		"vanilla":  {Safe: true},
	}
	svc, err := NewService(tempTable(t, table))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestEnrichSafePerfume(t *testing.T) {
	svc := testService(t)
	p := matching.Perfume{ID: "p1", Ingredients: []string{"vanilla", "jasmine"}}

	enriched, err := svc.Enrich(p, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if enriched.Safety != matching.SafetySafe {
		t.Fatalf("expected safe flag got %s", enriched.Safety)
	}
	if enriched.IFRAScore != 100 {
		t.Fatalf("expected score 100 got %d", enriched.IFRAScore)
	}
	if len(enriched.SymptomTriggers) != 0 {
		t.Fatalf("no user symptoms reported, triggers must be empty: %v", enriched.SymptomTriggers)
	}
	if enriched.EnrichmentFailed {
		t.Fatal("enrichment succeeded but flag set")
	}
}

func TestEnrichUnsafeIngredients(t *testing.T) {
	svc := testService(t)
	p := matching.Perfume{ID: "p2", Ingredients: []string{"oakmoss", "bergamot", "vanilla"}}

	enriched, err := svc.Enrich(p, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if enriched.Safety != matching.SafetyUnsafe {
		t.Fatalf("expected unsafe flag got %s", enriched.Safety)
	}
	// two unsafe ingredients: 100 - 2*25
	if enriched.IFRAScore != 50 {
		t.Fatalf("expected score 50 got %d", enriched.IFRAScore)
	}
	if len(enriched.IFRAWarnings) != 2 {
		t.Fatalf("expected 2 warnings got %v", enriched.IFRAWarnings)
	}
}

func TestEnrichTriggersIntersectUserSymptoms(t *testing.T) {
	svc := testService(t)
	p := matching.Perfume{ID: "p3", Ingredients: []string{"jasmine", "oakmoss"}}

	enriched, err := svc.Enrich(p, []string{"Sneeze", "headache"})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(enriched.SymptomTriggers) != 1 || enriched.SymptomTriggers[0] != "sneeze" {
		t.Fatalf("expected only the reported sneeze trigger, got %v", enriched.SymptomTriggers)
	}
}

func TestEnrichFailureLeavesSafetyUnknown(t *testing.T) {
	svc := &Service{}
	p := matching.Perfume{ID: "p4", Ingredients: []string{"vanilla"}}

	got, err := svc.Enrich(p, nil)
	if err == nil {
		t.Fatal("expected error from empty service")
	}
	if got.Safety != matching.SafetyUnknown {
		t.Fatalf("failed enrichment must leave safety unknown, got %s", got.Safety)
	}
}

func TestNewServiceRejectsMissingFile(t *testing.T) {
	if _, err := NewService("does-not-exist.json"); err == nil {
		t.Fatal("expected error for missing table")
	}
}
