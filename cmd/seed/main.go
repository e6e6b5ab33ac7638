package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"askseba/backend/internal/catalog"
	"askseba/backend/internal/store"
)

func main() {
	var (
		dbPath       = flag.String("db", filepath.FromSlash("data/askseba.db"), "Path to SQLite database")
		perfumesPath = flag.String("perfumes", filepath.FromSlash("data/fallback_perfumes.json"), "Path to perfume records JSON")
		shopsPath    = flag.String("shops", filepath.FromSlash("data/shops.json"), "Path to shops and prices JSON")
	)
	flag.Parse()

	db, err := store.Open(*dbPath, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	perfumes := 0
	if strings.TrimSpace(*perfumesPath) != "" {
		perfumes, err = seedPerfumes(db, *perfumesPath)
		if err != nil {
			logrus.Fatalf("seed perfumes: %v", err)
		}
	}

	shops, quotes := 0, 0
	if strings.TrimSpace(*shopsPath) != "" {
		shops, quotes, err = seedShops(db, *shopsPath)
		if err != nil {
			logrus.Fatalf("seed shops: %v", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"perfumes": perfumes,
		"shops":    shops,
		"prices":   quotes,
	}).Info("seeding complete")
}

func seedPerfumes(db *store.Database, path string) (int, error) {
	records, err := catalog.LoadRecords(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			continue
		}
		p := record.ToMatching()
		row := &store.Perfume{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Image:       p.Image,
			Description: p.Description,
			Price:       p.Price,
			Status:      p.Status,
			Variant:     p.Variant,
			Source:      p.Source,
			FragellaID:  p.FragellaID,
		}
		row.SetFamilies(p.Families)
		row.SetIngredients(p.Ingredients)
		row.SetTriggers(p.SymptomTriggers)
		if p.Pyramid != nil {
			row.SetPyramid(&store.Pyramid{
				Top:   p.Pyramid.Top,
				Heart: p.Pyramid.Heart,
				Base:  p.Pyramid.Base,
			})
		}
		if err := db.UpsertPerfume(row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type priceSeed struct {
	PerfumeID string  `json:"perfume_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type shopSeed struct {
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	AffiliateURL string      `json:"affiliate_url"`
	Active       bool        `json:"active"`
	DisplayRank  int         `json:"display_rank"`
	Prices       []priceSeed `json:"prices"`
}

func seedShops(db *store.Database, path string) (int, int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, 0, err
	}
	var seeds []shopSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, 0, err
	}

	shops, quotes := 0, 0
	for _, seed := range seeds {
		if strings.TrimSpace(seed.Slug) == "" {
			continue
		}
		shop := &store.Shop{
			Slug:         seed.Slug,
			Name:         seed.Name,
			AffiliateURL: seed.AffiliateURL,
			Active:       seed.Active,
			DisplayRank:  seed.DisplayRank,
		}
		if err := db.UpsertShop(shop); err != nil {
			return shops, quotes, err
		}
		shops++

		for _, quote := range seed.Prices {
			if strings.TrimSpace(quote.PerfumeID) == "" || quote.Amount <= 0 {
				continue
			}
			currency := quote.Currency
			if currency == "" {
				currency = "SAR"
			}
			price := &store.Price{
				PerfumeID: quote.PerfumeID,
				ShopSlug:  seed.Slug,
				Amount:    quote.Amount,
				Currency:  currency,
			}
			if err := db.UpsertPrice(price); err != nil {
				return shops, quotes, err
			}
			quotes++
		}
	}
	return shops, quotes, nil
}
