package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"askseba/backend/internal/fragella"
	"askseba/backend/internal/matching"
	"askseba/backend/internal/store"
)

// Record is the serialized catalog representation used for the fallback file
// and the persisted search cache. The safety flag travels as an optional
// boolean: absent means unknown, and unknown must never decode as safe.
type Record struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Brand           string                 `json:"brand"`
	Image           string                 `json:"image"`
	Description     string                 `json:"description,omitempty"`
	Price           *float64               `json:"price,omitempty"`
	Families        []string               `json:"families"`
	Ingredients     []string               `json:"ingredients"`
	SymptomTriggers []string               `json:"symptom_triggers"`
	IsSafe          *bool                  `json:"is_safe,omitempty"`
	Status          string                 `json:"status,omitempty"`
	Variant         string                 `json:"variant,omitempty"`
	Source          string                 `json:"source,omitempty"`
	FragellaID      string                 `json:"fragella_id,omitempty"`
	Pyramid         *matching.ScentPyramid `json:"scent_pyramid,omitempty"`
}

// ToMatching converts the record into a fully-defaulted scoring candidate.
func (r Record) ToMatching() matching.Perfume {
	status := r.Status
	if status == "" {
		status = "active"
	}
	source := r.Source
	if source == "" {
		source = SourceLocal
	}
	return matching.Perfume{
		ID:              r.ID,
		Name:            r.Name,
		Brand:           r.Brand,
		Image:           r.Image,
		Description:     r.Description,
		Price:           r.Price,
		Families:        emptyIfNil(r.Families),
		Ingredients:     emptyIfNil(r.Ingredients),
		SymptomTriggers: emptyIfNil(r.SymptomTriggers),
		Safety:          matching.SafetyFlagFromBool(r.IsSafe),
		Status:          status,
		Variant:         r.Variant,
		Pyramid:         r.Pyramid,
		Source:          source,
		FragellaID:      r.FragellaID,
	}
}

func recordsToMatching(records []Record) []matching.Perfume {
	out := make([]matching.Perfume, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, r.ToMatching())
	}
	return out
}

func recordFromFragrance(fr fragella.Fragrance) Record {
	id := fr.FragellaID
	if id == "" {
		id = slug(fr.Brand + "-" + fr.Name)
	}
	record := Record{
		ID:              "fragella-" + id,
		Name:            fr.Name,
		Brand:           fr.Brand,
		Image:           fr.Image,
		Description:     fr.Description,
		Price:           fr.Price,
		Families:        emptyIfNil(fr.Families),
		Ingredients:     emptyIfNil(fr.Ingredients),
		SymptomTriggers: []string{},
		Source:          SourceFragella,
		FragellaID:      fr.FragellaID,
	}
	if len(fr.TopNotes) > 0 || len(fr.HeartNotes) > 0 || len(fr.BaseNotes) > 0 {
		record.Pyramid = &matching.ScentPyramid{
			Top:   fr.TopNotes,
			Heart: fr.HeartNotes,
			Base:  fr.BaseNotes,
		}
	}
	return record
}

// FromStore converts a persisted catalog row into a scoring candidate.
func FromStore(row *store.Perfume) matching.Perfume {
	var pyramid *matching.ScentPyramid
	if p := row.Pyramid(); p != nil {
		pyramid = &matching.ScentPyramid{Top: p.Top, Heart: p.Heart, Base: p.Base}
	}
	source := row.Source
	if source == "" {
		source = SourceLocal
	}
	status := row.Status
	if status == "" {
		status = "active"
	}
	return matching.Perfume{
		ID:              row.ID,
		Name:            row.Name,
		Brand:           row.Brand,
		Image:           row.Image,
		Description:     row.Description,
		Price:           row.Price,
		Families:        emptyIfNil(row.Families()),
		Ingredients:     emptyIfNil(row.Ingredients()),
		SymptomTriggers: emptyIfNil(row.Triggers()),
		Status:          status,
		Variant:         row.Variant,
		Pyramid:         pyramid,
		Source:          source,
		FragellaID:      row.FragellaID,
	}
}

// Fallback returns the bundled fallback pool, loading and caching the file on
// first use.
func (s *Service) Fallback() ([]matching.Perfume, error) {
	records, err := s.fallbackRecords()
	if err != nil {
		return nil, err
	}
	return recordsToMatching(records), nil
}

func (s *Service) fallbackRecords() ([]Record, error) {
	if s == nil || strings.TrimSpace(s.fallbackPath) == "" {
		return nil, fmt.Errorf("fallback path not configured")
	}
	s.fallbackOnce.Do(func() {
		s.fallbackRecs, s.fallbackErr = LoadRecords(s.fallbackPath)
	})
	return s.fallbackRecs, s.fallbackErr
}

func (s *Service) fallbackSize() int {
	records, err := s.fallbackRecords()
	if err != nil {
		return 0
	}
	return len(records)
}

// LoadRecords reads catalog records from a JSON file.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal catalog records: %w", err)
	}
	return records, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
