// Package prices compares storefront prices for a perfume and builds
// per-store search URLs for shops without a stored quote.
package prices

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"askseba/backend/internal/store"
)

// searchPatterns maps a shop slug to its search URL template. {query} is
// replaced with the escaped "brand name" string.
var searchPatterns = map[string]string{
	"niceone":     "https://niceonesa.com/search?type=product&q={query}&utm_source=askseba",
	"goldenscent": "https://www.goldenscent.com/catalogsearch/result/?q={query}&utm_source=askseba",
	"faces":       "https://www.faces.sa/search?q={query}&utm_source=askseba",
	"ounass-sa":   "https://saudi.ounass.com/search?q={query}&utm_source=askseba",
	"sultan":      "https://sultanperfumes.net/?s={query}&utm_source=askseba",
	"lojastore":   "https://lojastoregt.com/?s={query}&utm_source=askseba",
	"vanilla":     "https://vanilla.sa/?s={query}&utm_source=askseba",
}

// displayOrder ranks shops without a stored price.
var displayOrder = []string{
	"goldenscent",
	"niceone",
	"faces",
	"ounass-sa",
	"sultan",
	"vanilla",
	"lojastore",
}

// BuildSearchURL returns the store search URL for a perfume. Shops with a
// known pattern use it; otherwise q and utm_source are appended to the
// shop's affiliate URL.
func BuildSearchURL(shopSlug, name, brand, fallbackURL string) string {
	query := url.QueryEscape(strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(name)))

	if pattern, ok := searchPatterns[shopSlug]; ok {
		return strings.ReplaceAll(pattern, "{query}", query)
	}

	params := fmt.Sprintf("q=%s&utm_source=askseba", query)
	if fallbackURL == "" {
		return "?" + params
	}
	separator := "?"
	if strings.Contains(fallbackURL, "?") {
		separator = "&"
	}
	return fallbackURL + separator + params
}

// StorePrice is one storefront's entry in a comparison.
type StorePrice struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Logo        string     `json:"logo"`
	Price       *float64   `json:"price"`
	Currency    string     `json:"currency,omitempty"`
	Available   bool       `json:"available"`
	URL         string     `json:"url"`
	SearchURL   string     `json:"searchUrl"`
	LastUpdated *time.Time `json:"lastUpdated"`
	PriceSource string     `json:"priceSource"`
}

// Comparison is the full price-comparison result for one perfume.
type Comparison struct {
	Stores         []StorePrice `json:"stores"`
	TotalWithPrice int          `json:"totalWithPrice"`
	TotalStores    int          `json:"totalStores"`
}

// Service resolves comparisons against the shop and price tables.
type Service struct {
	db *store.Database
}

// NewService wires the comparison service.
func NewService(db *store.Database) *Service {
	return &Service{db: db}
}

// Compare assembles the storefront list for a perfume. Shops with a stored
// price come first, cheapest to dearest; the rest follow in display order.
func (s *Service) Compare(perfumeID, name, brand string) (*Comparison, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("price service has no database")
	}
	perfumeID = strings.TrimSpace(perfumeID)
	if perfumeID == "" {
		return nil, errors.New("perfume id is required")
	}

	shops, err := s.db.ActiveShops()
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	quotes, err := s.db.PricesForPerfume(perfumeID)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}

	quoteByShop := make(map[string]store.Price, len(quotes))
	for _, q := range quotes {
		quoteByShop[q.ShopSlug] = q
	}

	items := make([]StorePrice, 0, len(shops))
	for _, shop := range shops {
		searchURL := BuildSearchURL(shop.Slug, name, brand, shop.AffiliateURL)
		item := StorePrice{
			ID:          shop.Slug,
			Name:        shop.Name,
			Logo:        "/stores/" + shop.Slug + ".svg",
			Available:   true,
			URL:         searchURL,
			SearchURL:   searchURL,
			PriceSource: "none",
		}
		if quote, ok := quoteByShop[shop.Slug]; ok && quote.Amount > 0 {
			amount := quote.Amount
			updated := quote.UpdatedAt
			item.Price = &amount
			item.Currency = quote.Currency
			item.URL = shop.AffiliateURL
			item.LastUpdated = &updated
			item.PriceSource = "db"
		}
		items = append(items, item)
	}

	priced := make([]StorePrice, 0, len(items))
	unpriced := make([]StorePrice, 0, len(items))
	for _, item := range items {
		if item.Price != nil {
			priced = append(priced, item)
		} else {
			unpriced = append(unpriced, item)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		return *priced[i].Price < *priced[j].Price
	})
	sort.SliceStable(unpriced, func(i, j int) bool {
		return displayIndex(unpriced[i].ID) < displayIndex(unpriced[j].ID)
	})

	return &Comparison{
		Stores:         append(priced, unpriced...),
		TotalWithPrice: len(priced),
		TotalStores:    len(items),
	}, nil
}

func displayIndex(slug string) int {
	for i, s := range displayOrder {
		if s == slug {
			return i
		}
	}
	return len(displayOrder) + 1
}
