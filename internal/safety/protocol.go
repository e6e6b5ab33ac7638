// Package safety decides whether purchase links may be shown for a scored
// perfume. Rule: safety above all else — the checks run in a fixed order and
// the first hit wins.
package safety

import "askseba/backend/internal/matching"

// WarningLevel grades the severity of a gate decision.
type WarningLevel string

const (
	LevelSafe     WarningLevel = "safe"
	LevelCaution  WarningLevel = "caution"
	LevelCritical WarningLevel = "critical"
)

// StatusUnsafe overrides the engine's match status whenever the gate blocks
// purchase links.
const StatusUnsafe matching.MatchStatus = "unsafe"

// CheckResult is the gate verdict. MessageKey is an i18n identifier; the gate
// never produces user-facing text.
type CheckResult struct {
	CanPurchase  bool
	WarningLevel WarningLevel
	MessageKey   string
	Reason       string
}

// CanShowPurchaseLinks evaluates the purchase-link gate for one scored record.
//
// The unknown-safety check runs before everything else: a record whose
// enrichment failed, or whose safety flag was never resolved, must never pass
// as purchasable. The unsafe-flag check deliberately does not require a
// non-empty warnings list.
func CanShowPurchaseLinks(p matching.ScoredPerfume) CheckResult {
	if p.EnrichmentFailed || p.Safety == matching.SafetyUnknown {
		return CheckResult{
			CanPurchase:  false,
			WarningLevel: LevelCritical,
			MessageKey:   "safety.unknownSafety",
			Reason:       "enrichmentfailed",
		}
	}

	if p.SafetyScore == 0 {
		return CheckResult{
			CanPurchase:  false,
			WarningLevel: LevelCritical,
			MessageKey:   "safety.criticalConflict",
			Reason:       "safetyscorezero",
		}
	}

	if len(p.SymptomTriggers) > 0 {
		return CheckResult{
			CanPurchase:  false,
			WarningLevel: LevelCritical,
			MessageKey:   "safety.symptomTriggers",
			Reason:       "symptomtriggers",
		}
	}

	if p.Safety == matching.SafetyUnsafe {
		return CheckResult{
			CanPurchase:  false,
			WarningLevel: LevelCritical,
			MessageKey:   "safety.ifraCritical",
			Reason:       "ifracritical",
		}
	}

	if p.SafetyScore < 50 {
		return CheckResult{
			CanPurchase:  true,
			WarningLevel: LevelCaution,
			MessageKey:   "safety.lowSafety",
			Reason:       "lowsafety",
		}
	}

	return CheckResult{
		CanPurchase:  true,
		WarningLevel: LevelSafe,
		MessageKey:   "safety.safe",
	}
}

// MatchStatusWithSafety returns the externally visible status for a scored
// record: "unsafe" whenever the gate blocks purchase, otherwise the record's
// own match status.
func MatchStatusWithSafety(p matching.ScoredPerfume) matching.MatchStatus {
	if !CanShowPurchaseLinks(p).CanPurchase {
		return StatusUnsafe
	}
	if p.MatchStatus == "" {
		// Defensive only; the scoring engine always sets the status.
		return matching.StatusForScore(p.FinalScore)
	}
	return p.MatchStatus
}
