// Package fragrance normalizes free-form scent-family labels from catalog
// payloads (English, Fragella vocabulary, Arabic) onto the canonical family
// keys used by scoring and display.
package fragrance

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FamilyKey is a canonical scent-family identifier.
type FamilyKey string

const (
	Floral    FamilyKey = "floral"
	Citrus    FamilyKey = "citrus"
	Woody     FamilyKey = "woody"
	Oriental  FamilyKey = "oriental"
	Fresh     FamilyKey = "fresh"
	Gourmand  FamilyKey = "gourmand"
	Spicy     FamilyKey = "spicy"
	Leather   FamilyKey = "leather"
	Musky     FamilyKey = "musky"
	Powdery   FamilyKey = "powdery"
	Green     FamilyKey = "green"
	Aquatic   FamilyKey = "aquatic"
	Amber     FamilyKey = "amber"
	Aldehydic FamilyKey = "aldehydic"
	Chypre    FamilyKey = "chypre"
	Default   FamilyKey = "default"
)

var familyAliases = map[string]FamilyKey{
	"floral":   Floral,
	"flowers":  Floral,
	"citrus":   Citrus,
	"woody":    Woody,
	"woods":    Woody,
	"oriental": Oriental,
	"ambery":   Oriental,
	"fresh":    Fresh,
	"gourmand": Gourmand,
	"spicy":    Spicy,
	"spices":   Spicy,
	"leather":  Leather,
	"musky":    Musky,
	"musk":     Musky,
	"powdery":  Powdery,
	"green":    Green,
	"aquatic":  Aquatic,
	"marine":   Aquatic,
	"amber":    Amber,
	"aldehydic": Aldehydic,
	"aldehyde":  Aldehydic,

	// Fragella vocabulary.
	"chypre":       Chypre,
	"fougere":      Fresh,
	"fougère":      Fresh,
	"aromatic":     Fresh,
	"fruity":       Citrus,
	"white floral": Floral,
	"balsamic":     Amber,
	"animalic":     Musky,
	"ozonic":       Aquatic,
	"tobacco":      Spicy,
	"earthy":       Woody,
	"resinous":     Amber,
	"herbal":       Green,
	"sweet":        Gourmand,

	// Arabic labels.
	"زهري":    Floral,
	"خشبي":    Woody,
	"شرقي":    Oriental,
	"حمضيات":  Citrus,
	"منعش":    Fresh,
	"حلويات":  Gourmand,
	"جورماند": Gourmand,
	"حار":     Spicy,
	"جلدي":    Leather,
	"مسكي":    Musky,
	"بودري":   Powdery,
	"عشبي":    Green,
	"مائي":    Aquatic,
	"عنبر":    Amber,
	"شيبر":    Chypre,
}

// Normalize maps a raw family label onto its canonical key, falling back to
// Default for unrecognized input.
func Normalize(raw string) FamilyKey {
	cleaned := norm.NFC.String(strings.ToLower(strings.TrimSpace(raw)))
	if cleaned == "" {
		return Default
	}
	if key, ok := familyAliases[cleaned]; ok {
		return key
	}
	return Default
}

// NormalizeAll normalizes a family slice, dropping unrecognized labels and
// duplicates while preserving first-seen order.
func NormalizeAll(raw []string) []string {
	seen := make(map[FamilyKey]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, label := range raw {
		key := Normalize(label)
		if key == Default {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, string(key))
	}
	return out
}
