package matching

import "testing"

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[string]struct{}
		expected float64
	}{
		{"both empty", set(), set(), 0},
		{"identical", set("floral", "woody"), set("floral", "woody"), 1},
		{"disjoint", set("floral"), set("woody"), 0},
		{"partial", set("floral", "citrus"), set("floral", "woody"), 1.0 / 3.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := JaccardSimilarity(tc.a, tc.b)
			if got != tc.expected {
				t.Fatalf("expected %v got %v", tc.expected, got)
			}
		})
	}
}

func TestCalculateTasteScore(t *testing.T) {
	if got := CalculateTasteScore([]string{"floral"}, set()); got != 50 {
		t.Fatalf("empty DNA should score neutral 50, got %d", got)
	}
	// |{floral}| / |{floral, citrus, woody}| = 1/3 -> 33
	got := CalculateTasteScore([]string{"Floral", "Citrus"}, set("floral", "woody"))
	if got != 33 {
		t.Fatalf("expected 33 got %d", got)
	}
	if got := CalculateTasteScore([]string{"floral"}, set("floral")); got != 100 {
		t.Fatalf("expected 100 got %d", got)
	}
}

func TestCalculateSafetyScore(t *testing.T) {
	allergies := AllergyProfile{
		Symptoms:    []string{"headache", "sneeze"},
		Ingredients: []string{"oakmoss", "bergamot"},
	}

	tests := []struct {
		name        string
		ingredients []string
		triggers    []string
		expected    int
		reasonCode  string
	}{
		{"no conflicts", []string{"vanilla"}, nil, 100, ""},
		{"one symptom", []string{"vanilla"}, []string{"headache"}, 75, ReasonCauseSymptom},
		{"symptom plus ingredient", []string{"oakmoss"}, []string{"headache"}, 50, ReasonCauseSymptom},
		{"three conflicts", []string{"oakmoss", "bergamot"}, []string{"headache"}, 0, ReasonCauseSymptom},
		{"ingredient only", []string{"oakmoss"}, nil, 75, ReasonCauseIngredient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, reason := CalculateSafetyScore(tc.ingredients, tc.triggers, allergies)
			if score != tc.expected {
				t.Fatalf("expected score %d got %d", tc.expected, score)
			}
			if tc.reasonCode == "" {
				if reason != nil {
					t.Fatalf("expected no reason, got %+v", reason)
				}
				return
			}
			if reason == nil || reason.Code != tc.reasonCode {
				t.Fatalf("expected reason %s got %+v", tc.reasonCode, reason)
			}
		})
	}
}

func TestSymptomsCheckedBeforeIngredients(t *testing.T) {
	allergies := AllergyProfile{
		Symptoms:    []string{"headache"},
		Ingredients: []string{"oakmoss"},
	}
	_, reason := CalculateSafetyScore([]string{"oakmoss"}, []string{"headache"}, allergies)
	if reason == nil || reason.Code != ReasonCauseSymptom {
		t.Fatalf("first conflict must come from symptoms, got %+v", reason)
	}
	if reason.Params["symptom"] != "headache" {
		t.Fatalf("expected symptom param headache got %q", reason.Params["symptom"])
	}
}

func TestCalculateFinalMatchScore(t *testing.T) {
	// 33*0.7 + 100*0.3 = 53.1 -> 53
	if got := CalculateFinalMatchScore(33, 100); got != 53 {
		t.Fatalf("expected 53 got %d", got)
	}
	if got := CalculateFinalMatchScore(100, 100); got != 100 {
		t.Fatalf("expected 100 got %d", got)
	}
	if got := CalculateFinalMatchScore(0, 0); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score    int
		expected MatchStatus
	}{
		{100, StatusExcellent},
		{80, StatusExcellent},
		{79, StatusGood},
		{60, StatusGood},
		{59, StatusFair},
		{40, StatusFair},
		{39, StatusPoor},
		{0, StatusPoor},
	}
	for _, tc := range tests {
		if got := StatusForScore(tc.score); got != tc.expected {
			t.Fatalf("score %d: expected %s got %s", tc.score, tc.expected, got)
		}
	}
}

func TestCalculateMatchScoresExclusions(t *testing.T) {
	perfumes := []Perfume{
		{ID: "p1", Name: "Kept", Families: []string{"floral"}, Ingredients: []string{}, SymptomTriggers: []string{}},
		{ID: "p2", Name: "Disliked", Families: []string{"floral"}, Ingredients: []string{}, SymptomTriggers: []string{}},
		{ID: "p3", Name: "Allergic", Families: []string{"Woody"}, Ingredients: []string{}, SymptomTriggers: []string{}},
	}
	pref := UserPreference{
		LikedFamilies: []string{"floral"},
		DislikedIDs:   []string{"p2"},
		Allergies:     AllergyProfile{Families: []string{"woody"}},
	}

	scored := CalculateMatchScores(perfumes, pref)
	if len(scored) != 1 {
		t.Fatalf("expected 1 surviving record got %d", len(scored))
	}
	if scored[0].ID != "p1" {
		t.Fatalf("expected p1 to survive got %s", scored[0].ID)
	}
	for _, sp := range scored {
		if sp.ID == "p2" || sp.ID == "p3" {
			t.Fatalf("hard-excluded record %s leaked into output", sp.ID)
		}
	}
}

func TestCalculateMatchScoresZeroSafety(t *testing.T) {
	perfumes := []Perfume{
		{
			ID:              "danger",
			Name:            "Danger",
			Families:        []string{"floral"},
			Ingredients:     []string{"oakmoss", "bergamot", "citral"},
			SymptomTriggers: []string{},
		},
	}
	pref := UserPreference{
		LikedFamilies: []string{"floral"},
		Allergies:     AllergyProfile{Ingredients: []string{"oakmoss", "bergamot", "citral"}},
	}

	scored := CalculateMatchScores(perfumes, pref)
	if len(scored) != 1 {
		t.Fatalf("zero-safety record must stay in output, got %d records", len(scored))
	}
	sp := scored[0]
	if sp.SafetyScore != 0 {
		t.Fatalf("expected safety 0 got %d", sp.SafetyScore)
	}
	if sp.Excluded {
		t.Fatal("zero-safety record must not be marked excluded")
	}
	if sp.ExclusionReason == nil {
		t.Fatal("zero-safety record must carry a warning reason")
	}
	// taste 100 -> final round(100*0.7) = 70, the safety weight contributes nothing
	if sp.FinalScore != 70 {
		t.Fatalf("expected taste-only final 70 got %d", sp.FinalScore)
	}
}

func TestCalculateMatchScoresSorting(t *testing.T) {
	perfumes := []Perfume{
		{ID: "b", Name: "بخور", Families: []string{"woody"}, Ingredients: []string{}, SymptomTriggers: []string{}},
		{ID: "a", Name: "أمواج", Families: []string{"woody"}, Ingredients: []string{}, SymptomTriggers: []string{}},
		{ID: "top", Name: "صدارة", Families: []string{"floral"}, Ingredients: []string{}, SymptomTriggers: []string{}},
	}
	pref := UserPreference{LikedFamilies: []string{"floral"}}

	scored := CalculateMatchScores(perfumes, pref)
	if len(scored) != 3 {
		t.Fatalf("expected 3 records got %d", len(scored))
	}
	if scored[0].ID != "top" {
		t.Fatalf("highest score must sort first, got %s", scored[0].ID)
	}
	// Equal scores: names tie-broken ascending under Arabic collation.
	if scored[1].ID != "a" || scored[2].ID != "b" {
		t.Fatalf("expected tie order a,b got %s,%s", scored[1].ID, scored[2].ID)
	}
}

func TestBuildUserScentDNA(t *testing.T) {
	dna := BuildUserScentDNA([]string{"Floral", " floral ", "WOODY", ""})
	if len(dna) != 2 {
		t.Fatalf("expected 2 entries got %d", len(dna))
	}
	if _, ok := dna["floral"]; !ok {
		t.Fatal("missing floral")
	}
	if _, ok := dna["woody"]; !ok {
		t.Fatal("missing woody")
	}
}
