package api

import (
	"testing"

	"askseba/backend/internal/matching"
)

func TestGateForTier(t *testing.T) {
	tests := []struct {
		input   string
		tier    string
		limit   int
		blurred int
	}{
		{"GUEST", "GUEST", 3, 3},
		{"free", "FREE", 10, 5},
		{" premium ", "PREMIUM", 0, 0},
		{"", "GUEST", 3, 3},
		{"nonsense", "GUEST", 3, 3},
	}
	for _, tc := range tests {
		tier, gate := gateForTier(tc.input)
		if tier != tc.tier || gate.Limit != tc.limit || gate.Blurred != tc.blurred {
			t.Fatalf("gateForTier(%q) = %s/%d/%d, expected %s/%d/%d",
				tc.input, tier, gate.Limit, gate.Blurred, tc.tier, tc.limit, tc.blurred)
		}
	}
}

func TestScoredFromModelEmbedsSafetyVerdict(t *testing.T) {
	sp := matching.ScoredPerfume{
		Perfume: matching.Perfume{
			ID:       "p1",
			Name:     "P1",
			Families: []string{"floral"},
			Safety:   matching.SafetyUnsafe,
		},
		TasteScore:  80,
		SafetyScore: 75,
		FinalScore:  79,
		MatchStatus: matching.StatusGood,
	}

	dto := ScoredFromModel(sp)
	if dto.CanPurchase {
		t.Fatal("unsafe record must not be purchasable")
	}
	if dto.StatusWithSafety != "unsafe" {
		t.Fatalf("expected statusWithSafety unsafe got %s", dto.StatusWithSafety)
	}
	if dto.MatchStatus != "good" {
		t.Fatalf("engine status must pass through unchanged, got %s", dto.MatchStatus)
	}
	if dto.IFRAWarnings == nil || dto.SymptomTriggers == nil {
		t.Fatal("slice fields must serialize as empty arrays, not null")
	}
}

func TestBlurredFromModel(t *testing.T) {
	sp := matching.ScoredPerfume{
		Perfume:    matching.Perfume{ID: "p1", Families: []string{"oriental", "woody"}},
		FinalScore: 64,
	}
	dto := BlurredFromModel(sp)
	if dto.ID != "p1" || dto.MatchScore != 64 || dto.FamilyHint != "oriental" {
		t.Fatalf("unexpected blurred item: %+v", dto)
	}

	sp.Families = nil
	if hint := BlurredFromModel(sp).FamilyHint; hint != "perfume" {
		t.Fatalf("expected fallback hint, got %s", hint)
	}
}
