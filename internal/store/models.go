package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Perfume is a locally persisted catalog record. Slice-valued attributes are
// stored as JSON text columns.
type Perfume struct {
	ID              string `gorm:"primaryKey;size:64"`
	Name            string `gorm:"size:256;index"`
	Brand           string `gorm:"size:256;index"`
	Image           string `gorm:"size:512"`
	Description     string `gorm:"type:text"`
	Price           *float64
	FamiliesJSON    string `gorm:"type:text"`
	IngredientsJSON string `gorm:"type:text"`
	TriggersJSON    string `gorm:"type:text"`
	PyramidJSON     string `gorm:"type:text"`
	Status          string `gorm:"size:32"`
	Variant         string `gorm:"size:64"`
	Source          string `gorm:"size:32;index"`
	FragellaID      string `gorm:"size:64;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetFamilies persists the family list as JSON.
func (p *Perfume) SetFamilies(families []string) {
	p.FamiliesJSON = marshalStrings(families)
}

// Families returns the unmarshalled family tags.
func (p *Perfume) Families() []string {
	return unmarshalStrings(p.FamiliesJSON)
}

// SetIngredients persists the ingredient list as JSON.
func (p *Perfume) SetIngredients(ingredients []string) {
	p.IngredientsJSON = marshalStrings(ingredients)
}

// Ingredients returns the unmarshalled ingredient tags.
func (p *Perfume) Ingredients() []string {
	return unmarshalStrings(p.IngredientsJSON)
}

// SetTriggers persists the symptom trigger list as JSON.
func (p *Perfume) SetTriggers(triggers []string) {
	p.TriggersJSON = marshalStrings(triggers)
}

// Triggers returns the unmarshalled symptom trigger tags.
func (p *Perfume) Triggers() []string {
	return unmarshalStrings(p.TriggersJSON)
}

// Pyramid describes the stored scent pyramid payload.
type Pyramid struct {
	Top   []string `json:"top"`
	Heart []string `json:"heart"`
	Base  []string `json:"base"`
}

// SetPyramid persists the scent pyramid as JSON; nil clears it.
func (p *Perfume) SetPyramid(pyramid *Pyramid) {
	if pyramid == nil {
		p.PyramidJSON = ""
		return
	}
	payload, _ := json.Marshal(pyramid)
	p.PyramidJSON = string(payload)
}

// Pyramid returns the decoded scent pyramid, or nil when absent.
func (p *Perfume) Pyramid() *Pyramid {
	if strings.TrimSpace(p.PyramidJSON) == "" {
		return nil
	}
	var out Pyramid
	if err := json.Unmarshal([]byte(p.PyramidJSON), &out); err != nil {
		return nil
	}
	return &out
}

// SearchCache holds one cached catalog search response keyed by query term.
type SearchCache struct {
	Query       string `gorm:"primaryKey;size:256"`
	PayloadJSON string `gorm:"type:text"`
	ResultCount int
	FetchedAt   time.Time `gorm:"index"`
}

// Shop is a retail storefront participating in price comparison.
type Shop struct {
	Slug         string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:128"`
	AffiliateURL string `gorm:"size:512"`
	Active       bool   `gorm:"index"`
	DisplayRank  int    `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Price is a per-shop price quote for a perfume.
type Price struct {
	ID        uint   `gorm:"primaryKey"`
	PerfumeID string `gorm:"size:64;index:idx_price_perfume_shop,unique"`
	ShopSlug  string `gorm:"size:64;index:idx_price_perfume_shop,unique"`
	Amount    float64
	Currency  string `gorm:"size:8"`
	UpdatedAt time.Time
	CreatedAt time.Time
}

func marshalStrings(items []string) string {
	if items == nil {
		return "[]"
	}
	payload, _ := json.Marshal(items)
	return string(payload)
}

func unmarshalStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
