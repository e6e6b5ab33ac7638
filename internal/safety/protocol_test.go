package safety

import (
	"testing"

	"askseba/backend/internal/matching"
)

func scored(p matching.Perfume, safetyScore, finalScore int) matching.ScoredPerfume {
	return matching.ScoredPerfume{
		Perfume:     p,
		SafetyScore: safetyScore,
		FinalScore:  finalScore,
		MatchStatus: matching.StatusForScore(finalScore),
	}
}

func TestCanShowPurchaseLinks(t *testing.T) {
	tests := []struct {
		name        string
		record      matching.ScoredPerfume
		canPurchase bool
		level       WarningLevel
		messageKey  string
	}{
		{
			// Unknown safety blocks even a perfect safety score.
			"enrichment failed",
			scored(matching.Perfume{EnrichmentFailed: true, Safety: matching.SafetySafe}, 100, 90),
			false, LevelCritical, "safety.unknownSafety",
		},
		{
			"safety flag unknown",
			scored(matching.Perfume{Safety: matching.SafetyUnknown}, 100, 90),
			false, LevelCritical, "safety.unknownSafety",
		},
		{
			"zero safety score",
			scored(matching.Perfume{Safety: matching.SafetySafe}, 0, 40),
			false, LevelCritical, "safety.criticalConflict",
		},
		{
			"symptom triggers present",
			scored(matching.Perfume{Safety: matching.SafetySafe, SymptomTriggers: []string{"headache"}}, 75, 70),
			false, LevelCritical, "safety.symptomTriggers",
		},
		{
			// The unsafe flag alone blocks; it must not require warnings too.
			"unsafe flag with empty warnings",
			scored(matching.Perfume{Safety: matching.SafetyUnsafe, IFRAWarnings: []string{}}, 75, 70),
			false, LevelCritical, "safety.ifraCritical",
		},
		{
			"low safety score",
			scored(matching.Perfume{Safety: matching.SafetySafe}, 45, 60),
			true, LevelCaution, "safety.lowSafety",
		},
		{
			"fully safe",
			scored(matching.Perfume{Safety: matching.SafetySafe}, 100, 90),
			true, LevelSafe, "safety.safe",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CanShowPurchaseLinks(tc.record)
			if result.CanPurchase != tc.canPurchase {
				t.Fatalf("expected canPurchase=%v got %v", tc.canPurchase, result.CanPurchase)
			}
			if result.WarningLevel != tc.level {
				t.Fatalf("expected level %s got %s", tc.level, result.WarningLevel)
			}
			if result.MessageKey != tc.messageKey {
				t.Fatalf("expected key %s got %s", tc.messageKey, result.MessageKey)
			}
		})
	}
}

func TestRuleOrder(t *testing.T) {
	// A record hitting several rules at once reports the earliest one.
	record := scored(matching.Perfume{
		Safety:          matching.SafetyUnsafe,
		SymptomTriggers: []string{"headache"},
	}, 0, 20)
	record.EnrichmentFailed = true

	result := CanShowPurchaseLinks(record)
	if result.MessageKey != "safety.unknownSafety" {
		t.Fatalf("unknown-safety rule must win, got %s", result.MessageKey)
	}
}

func TestMatchStatusWithSafety(t *testing.T) {
	blocked := scored(matching.Perfume{Safety: matching.SafetyUnsafe}, 75, 85)
	if got := MatchStatusWithSafety(blocked); got != StatusUnsafe {
		t.Fatalf("blocked record must read unsafe, got %s", got)
	}

	purchasable := scored(matching.Perfume{Safety: matching.SafetySafe}, 100, 85)
	if got := MatchStatusWithSafety(purchasable); got != matching.StatusExcellent {
		t.Fatalf("expected excellent got %s", got)
	}

	// Missing status falls back to re-deriving from the final score.
	missing := purchasable
	missing.MatchStatus = ""
	missing.FinalScore = 65
	if got := MatchStatusWithSafety(missing); got != matching.StatusGood {
		t.Fatalf("expected re-derived good got %s", got)
	}
}
