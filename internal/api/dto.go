package api

import (
	"strings"
	"time"

	"askseba/backend/internal/matching"
	"askseba/backend/internal/safety"
)

// MatchRequest carries the quiz preferences for a scoring run. The tier is an
// input resolved by the caller; this service never authenticates users.
type MatchRequest struct {
	Preferences     PreferencesDTO `json:"preferences"`
	SeedSearchQuery string         `json:"seedSearchQuery"`
	Tier            string         `json:"tier"`
}

// PreferencesDTO mirrors the quiz payload.
type PreferencesDTO struct {
	LikedPerfumeIDs    []string   `json:"likedPerfumeIds"`
	DislikedPerfumeIDs []string   `json:"dislikedPerfumeIds"`
	AllergyProfile     AllergyDTO `json:"allergyProfile"`
}

// AllergyDTO holds the three independent allergy tag sets.
type AllergyDTO struct {
	Symptoms    []string `json:"symptoms"`
	Families    []string `json:"families"`
	Ingredients []string `json:"ingredients"`
}

// ToProfile converts the payload, defaulting absent arrays to empty sets.
func (a AllergyDTO) ToProfile() matching.AllergyProfile {
	return matching.AllergyProfile{
		Symptoms:    emptySlice(a.Symptoms),
		Families:    emptySlice(a.Families),
		Ingredients: emptySlice(a.Ingredients),
	}
}

// ReasonDTO is the structured exclusion/warning reason: an i18n key plus
// interpolation parameters, never rendered text.
type ReasonDTO struct {
	Key    string            `json:"key"`
	Params map[string]string `json:"params,omitempty"`
}

// PyramidDTO is the scent pyramid payload.
type PyramidDTO struct {
	Top   []string `json:"top"`
	Heart []string `json:"heart"`
	Base  []string `json:"base"`
}

// ScoredPerfumeDTO is one visible match result, scoring and safety-gate
// verdict included.
type ScoredPerfumeDTO struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Brand            string      `json:"brand"`
	Image            string      `json:"image"`
	Description      string      `json:"description,omitempty"`
	Price            *float64    `json:"price"`
	Families         []string    `json:"families"`
	ScentPyramid     *PyramidDTO `json:"scentPyramid,omitempty"`
	TasteScore       int         `json:"tasteScore"`
	SafetyScore      int         `json:"safetyScore"`
	FinalScore       int         `json:"finalScore"`
	MatchStatus      string      `json:"matchStatus"`
	ExclusionReason  *ReasonDTO  `json:"exclusionReason,omitempty"`
	IFRAScore        int         `json:"ifraScore"`
	IFRAWarnings     []string    `json:"ifraWarnings"`
	SymptomTriggers  []string    `json:"symptomTriggers"`
	Source           string      `json:"source"`
	FragellaID       string      `json:"fragellaId,omitempty"`
	EnrichmentFailed bool        `json:"enrichmentFailed"`
	CanPurchase      bool        `json:"canPurchase"`
	WarningLevel     string      `json:"warningLevel"`
	SafetyMessageKey string      `json:"safetyMessageKey"`
	SafetyReason     string      `json:"safetyReason,omitempty"`
	StatusWithSafety string      `json:"statusWithSafety"`
}

// BlurredItemDTO is a teaser entry beyond the tier's visible limit.
type BlurredItemDTO struct {
	ID         string `json:"id"`
	MatchScore int    `json:"matchScore"`
	FamilyHint string `json:"familyHint"`
}

// MatchResponse is the full match payload.
type MatchResponse struct {
	Success      bool               `json:"success"`
	Perfumes     []ScoredPerfumeDTO `json:"perfumes"`
	BlurredItems []BlurredItemDTO   `json:"blurredItems"`
	Tier         string             `json:"tier"`
	PoolSize     int                `json:"poolSize"`
	ElapsedMs    int64              `json:"elapsedMs"`
}

// ScoredFromModel converts a scored record into the API representation,
// running the purchase-link gate on the way out.
func ScoredFromModel(sp matching.ScoredPerfume) ScoredPerfumeDTO {
	check := safety.CanShowPurchaseLinks(sp)
	dto := ScoredPerfumeDTO{
		ID:               sp.ID,
		Name:             sp.Name,
		Brand:            sp.Brand,
		Image:            sp.Image,
		Description:      sp.Description,
		Price:            sp.Price,
		Families:         emptySlice(sp.Families),
		TasteScore:       sp.TasteScore,
		SafetyScore:      sp.SafetyScore,
		FinalScore:       sp.FinalScore,
		MatchStatus:      string(sp.MatchStatus),
		ExclusionReason:  reasonFromModel(sp.ExclusionReason),
		IFRAScore:        sp.IFRAScore,
		IFRAWarnings:     emptySlice(sp.IFRAWarnings),
		SymptomTriggers:  emptySlice(sp.SymptomTriggers),
		Source:           sp.Source,
		FragellaID:       sp.FragellaID,
		EnrichmentFailed: sp.EnrichmentFailed,
		CanPurchase:      check.CanPurchase,
		WarningLevel:     string(check.WarningLevel),
		SafetyMessageKey: check.MessageKey,
		SafetyReason:     check.Reason,
		StatusWithSafety: string(safety.MatchStatusWithSafety(sp)),
	}
	if sp.Pyramid != nil {
		dto.ScentPyramid = &PyramidDTO{
			Top:   emptySlice(sp.Pyramid.Top),
			Heart: emptySlice(sp.Pyramid.Heart),
			Base:  emptySlice(sp.Pyramid.Base),
		}
	}
	return dto
}

// BlurredFromModel builds a teaser entry from a scored record.
func BlurredFromModel(sp matching.ScoredPerfume) BlurredItemDTO {
	hint := "perfume"
	if len(sp.Families) > 0 && strings.TrimSpace(sp.Families[0]) != "" {
		hint = sp.Families[0]
	}
	return BlurredItemDTO{
		ID:         sp.ID,
		MatchScore: sp.FinalScore,
		FamilyHint: hint,
	}
}

func reasonFromModel(r *matching.Reason) *ReasonDTO {
	if r == nil {
		return nil
	}
	return &ReasonDTO{Key: r.Code, Params: r.Params}
}

func emptySlice(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// StartRefreshResponse describes the asynchronous refresh kickoff payload.
type StartRefreshResponse struct {
	JobID     string    `json:"job_id"`
	Query     string    `json:"query"`
	StartedAt time.Time `json:"started_at"`
}

// RefreshStatusResponse describes the state of the active refresh job.
type RefreshStatusResponse struct {
	Running   bool   `json:"running"`
	JobID     string `json:"job_id"`
	Query     string `json:"query"`
	State     string `json:"state"`
	Message   string `json:"message"`
	Persisted int    `json:"persisted"`
	Total     int    `json:"total"`
}
