package matching

// SafetyFlag is the tri-state ingredient-safety verdict for a perfume.
// The zero value is SafetyUnknown so a record that never went through
// enrichment can not read as safe.
type SafetyFlag int

const (
	SafetyUnknown SafetyFlag = iota
	SafetySafe
	SafetyUnsafe
)

// String returns the wire label for the flag.
func (f SafetyFlag) String() string {
	switch f {
	case SafetySafe:
		return "safe"
	case SafetyUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// SafetyFlagFromBool maps an optional boolean (as delivered by upstream
// catalog payloads) onto the tri-state flag. A nil pointer stays unknown.
func SafetyFlagFromBool(b *bool) SafetyFlag {
	if b == nil {
		return SafetyUnknown
	}
	if *b {
		return SafetySafe
	}
	return SafetyUnsafe
}

// ScentPyramid holds the optional top/heart/base note breakdown.
type ScentPyramid struct {
	Top   []string `json:"top"`
	Heart []string `json:"heart"`
	Base  []string `json:"base"`
}

// Perfume is a fully-defaulted candidate record entering the scoring engine.
// Callers normalize absent slices to empty before scoring; the engine assumes
// well-formed input and performs no I/O.
type Perfume struct {
	ID              string
	Name            string
	Brand           string
	Image           string
	Description     string
	Price           *float64
	Families        []string
	Ingredients     []string
	SymptomTriggers []string
	Safety          SafetyFlag
	Status          string
	Variant         string
	Pyramid         *ScentPyramid

	// Enrichment pass-through fields.
	IFRAScore        int
	IFRAWarnings     []string
	Source           string
	FragellaID       string
	EnrichmentFailed bool
}

// AllergyProfile carries the three independent allergy tag sets.
type AllergyProfile struct {
	Symptoms    []string
	Families    []string
	Ingredients []string
}

// UserPreference is the quiz-derived taste and safety input for one request.
type UserPreference struct {
	LikedFamilies []string
	DislikedIDs   []string
	Allergies     AllergyProfile
}

// Exclusion and warning reason codes. The engine emits codes plus named
// parameters; rendering them is the presentation layer's concern.
const (
	ReasonDisliked        = "results.exclusion.disliked"
	ReasonAllergyFamily   = "results.exclusion.allergyFamily"
	ReasonCauseSymptom    = "results.exclusion.causeSymptom"
	ReasonCauseIngredient = "results.exclusion.causeIngredient"
)

// Reason is a structured exclusion/warning cause.
type Reason struct {
	Code   string            `json:"key"`
	Params map[string]string `json:"params,omitempty"`
}

// MatchStatus is the four-tier classification derived from the final score.
type MatchStatus string

const (
	StatusExcellent MatchStatus = "excellent"
	StatusGood      MatchStatus = "good"
	StatusFair      MatchStatus = "fair"
	StatusPoor      MatchStatus = "poor"
)

// ScoredPerfume is a candidate annotated with scoring output.
type ScoredPerfume struct {
	Perfume
	TasteScore      int
	SafetyScore     int
	FinalScore      int
	Excluded        bool
	ExclusionReason *Reason
	MatchStatus     MatchStatus
}
