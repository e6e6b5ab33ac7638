package matching

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	tasteWeight  = 0.7
	safetyWeight = 0.3

	// Score returned for a user with no liked perfumes yet; avoids biasing
	// new users toward either extreme.
	neutralTasteScore = 50
)

// JaccardSimilarity returns |A∩B| / |A∪B| for two tag sets.
// Two empty sets yield 0, never NaN.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for item := range a {
		if _, ok := b[item]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// BuildUserScentDNA flattens the families of the user's liked perfumes into a
// lower-cased set. This set is the similarity baseline for taste scoring.
func BuildUserScentDNA(likedFamilies []string) map[string]struct{} {
	dna := make(map[string]struct{}, len(likedFamilies))
	for _, family := range likedFamilies {
		family = strings.ToLower(strings.TrimSpace(family))
		if family == "" {
			continue
		}
		dna[family] = struct{}{}
	}
	return dna
}

// CalculateTasteScore scores shared scent families between the perfume and the
// user's scent DNA on a 0-100 scale. An empty DNA returns the neutral score.
func CalculateTasteScore(perfumeFamilies []string, scentDNA map[string]struct{}) int {
	if len(scentDNA) == 0 {
		return neutralTasteScore
	}

	perfumeSet := lowerSet(perfumeFamilies)
	similarity := JaccardSimilarity(perfumeSet, scentDNA)
	return int(math.Round(similarity * 100))
}

// CalculateSafetyScore counts conflicts between the user's allergy profile and
// the perfume's symptom triggers and ingredients, mapping the count onto a
// graduated 0-100 score: 0 conflicts -> 100, 1 -> 75, 2 -> 50, 3+ -> 0.
// The first conflict encountered (symptoms before ingredients) becomes the
// structured reason. Family allergies are a hard exclusion handled one level
// up, not here.
func CalculateSafetyScore(ingredients, symptomTriggers []string, allergies AllergyProfile) (int, *Reason) {
	triggerSet := lowerSet(symptomTriggers)
	ingredientSet := lowerSet(ingredients)

	conflicts := 0
	var first *Reason

	for _, symptom := range allergies.Symptoms {
		if _, ok := triggerSet[strings.ToLower(symptom)]; ok {
			conflicts++
			if first == nil {
				first = &Reason{Code: ReasonCauseSymptom, Params: map[string]string{"symptom": symptom}}
			}
		}
	}
	for _, ingredient := range allergies.Ingredients {
		if _, ok := ingredientSet[strings.ToLower(ingredient)]; ok {
			conflicts++
			if first == nil {
				first = &Reason{Code: ReasonCauseIngredient, Params: map[string]string{"ingredient": ingredient}}
			}
		}
	}

	switch conflicts {
	case 0:
		return 100, nil
	case 1:
		return 75, first
	case 2:
		return 50, first
	default:
		return 0, first
	}
}

// CalculateFinalMatchScore blends taste and safety with fixed weights.
// The zero-safety branch of CalculateMatchScores bypasses this function.
func CalculateFinalMatchScore(tasteScore, safetyScore int) int {
	final := float64(tasteScore)*tasteWeight + float64(safetyScore)*safetyWeight
	return int(math.Round(final))
}

// StatusForScore maps a final score onto the four-tier match status.
func StatusForScore(finalScore int) MatchStatus {
	switch {
	case finalScore >= 80:
		return StatusExcellent
	case finalScore >= 60:
		return StatusGood
	case finalScore >= 40:
		return StatusFair
	default:
		return StatusPoor
	}
}

// CalculateMatchScores scores every candidate against the user preference and
// returns the surviving records sorted by final score descending, ties broken
// by name ascending under Arabic collation. Hard-excluded candidates (disliked
// id, allergy-family hit) are removed from the output entirely; zero-safety
// candidates stay in with a warning reason and a taste-only final score.
func CalculateMatchScores(perfumes []Perfume, pref UserPreference) []ScoredPerfume {
	scentDNA := BuildUserScentDNA(pref.LikedFamilies)

	disliked := make(map[string]struct{}, len(pref.DislikedIDs))
	for _, id := range pref.DislikedIDs {
		disliked[id] = struct{}{}
	}
	allergyFamilies := lowerSet(pref.Allergies.Families)

	scored := make([]ScoredPerfume, 0, len(perfumes))
	for _, perfume := range perfumes {
		scored = append(scored, scoreOne(perfume, pref, scentDNA, disliked, allergyFamilies))
	}

	kept := scored[:0]
	for _, item := range scored {
		if !item.Excluded {
			kept = append(kept, item)
		}
	}

	collator := collate.New(language.Arabic)
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].FinalScore != kept[j].FinalScore {
			return kept[i].FinalScore > kept[j].FinalScore
		}
		return collator.CompareString(kept[i].Name, kept[j].Name) < 0
	})
	return kept
}

func scoreOne(
	perfume Perfume,
	pref UserPreference,
	scentDNA map[string]struct{},
	disliked map[string]struct{},
	allergyFamilies map[string]struct{},
) ScoredPerfume {
	if _, ok := disliked[perfume.ID]; ok {
		return ScoredPerfume{
			Perfume:         perfume,
			Excluded:        true,
			ExclusionReason: &Reason{Code: ReasonDisliked},
			MatchStatus:     StatusPoor,
		}
	}

	for _, family := range perfume.Families {
		key := strings.ToLower(family)
		if _, ok := allergyFamilies[key]; ok {
			return ScoredPerfume{
				Perfume:         perfume,
				Excluded:        true,
				ExclusionReason: &Reason{Code: ReasonAllergyFamily, Params: map[string]string{"family": key}},
				MatchStatus:     StatusPoor,
			}
		}
	}

	tasteScore := CalculateTasteScore(perfume.Families, scentDNA)
	safetyScore, safetyReason := CalculateSafetyScore(perfume.Ingredients, perfume.SymptomTriggers, pref.Allergies)

	if safetyScore == 0 {
		// Shown with a warning, not dropped; a zero-safety perfume must never
		// be boosted above what pure taste affinity justifies.
		final := int(math.Round(float64(tasteScore) * tasteWeight))
		return ScoredPerfume{
			Perfume:         perfume,
			TasteScore:      tasteScore,
			SafetyScore:     0,
			FinalScore:      final,
			Excluded:        false,
			ExclusionReason: safetyReason,
			MatchStatus:     StatusForScore(final),
		}
	}

	final := CalculateFinalMatchScore(tasteScore, safetyScore)
	return ScoredPerfume{
		Perfume:     perfume,
		TasteScore:  tasteScore,
		SafetyScore: safetyScore,
		FinalScore:  final,
		Excluded:    false,
		MatchStatus: StatusForScore(final),
	}
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}
