// Package ifra enriches candidate perfumes with ingredient-safety data:
// an IFRA-style score, restriction warnings, symptom triggers relevant to the
// requesting user, and a definite safety flag.
package ifra

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"askseba/backend/internal/matching"
)

// Entry describes the safety profile of one ingredient.
type Entry struct {
	Safe     bool     `json:"safe"`
	Warnings []string `json:"ifra_warnings"`
	Symptoms []string `json:"symptoms"`
}

// Service resolves ingredient names against the safety table.
type Service struct {
	entries map[string]Entry
}

// NewService constructs an enrichment service from the provided JSON file.
func NewService(path string) (*Service, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read ingredient safety table: %w", err)
	}
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal ingredient safety table: %w", err)
	}
	entries := make(map[string]Entry, len(raw))
	for name, entry := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		entries[key] = entry
	}
	return &Service{entries: entries}, nil
}

// Validate ensures the service has at least baseline configuration.
func (s *Service) Validate() error {
	if s == nil {
		return errors.New("ifra service is nil")
	}
	if len(s.entries) == 0 {
		return errors.New("ingredient safety table is empty")
	}
	return nil
}

// Enrich resolves the perfume's ingredients against the safety table and
// returns a copy carrying the enrichment fields. Symptom triggers are limited
// to the symptoms the requesting user reported. On error the input is returned
// unchanged with its safety flag still unknown; the caller must mark the
// record as enrichment-failed rather than assume it safe.
func (s *Service) Enrich(p matching.Perfume, userSymptoms []string) (matching.Perfume, error) {
	if err := s.Validate(); err != nil {
		return p, err
	}

	userSet := make(map[string]struct{}, len(userSymptoms))
	for _, symptom := range userSymptoms {
		symptom = strings.ToLower(strings.TrimSpace(symptom))
		if symptom != "" {
			userSet[symptom] = struct{}{}
		}
	}

	unsafeCount := 0
	var warnings []string
	triggerSet := make(map[string]struct{})

	for _, ingredient := range p.Ingredients {
		entry, ok := s.entries[strings.ToLower(strings.TrimSpace(ingredient))]
		if !ok {
			continue
		}
		if !entry.Safe {
			unsafeCount++
			warnings = append(warnings, entry.Warnings...)
		}
		for _, symptom := range entry.Symptoms {
			key := strings.ToLower(strings.TrimSpace(symptom))
			if key == "" {
				continue
			}
			if _, reported := userSet[key]; reported {
				triggerSet[key] = struct{}{}
			}
		}
	}

	enriched := p
	enriched.IFRAScore = scoreForUnsafeCount(unsafeCount)
	enriched.IFRAWarnings = dedupe(warnings)
	enriched.SymptomTriggers = setToSortedSlice(triggerSet)
	if unsafeCount > 0 {
		enriched.Safety = matching.SafetyUnsafe
	} else {
		enriched.Safety = matching.SafetySafe
	}
	enriched.EnrichmentFailed = false
	return enriched, nil
}

func scoreForUnsafeCount(unsafe int) int {
	score := 100 - unsafe*25
	if score < 0 {
		return 0
	}
	return score
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func setToSortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
