// Package fragella talks to the Fragella fragrance catalog API with basic
// response caching and rate-limit handling.
package fragella

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"askseba/backend/internal/fragrance"
)

// Config drives Fragella client behaviour.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Limit    int
}

// Fragrance is the subset of Fragella catalog data the matcher consumes.
type Fragrance struct {
	FragellaID  string
	Name        string
	Brand       string
	Image       string
	Description string
	Price       *float64
	Families    []string
	Ingredients []string
	TopNotes    []string
	HeartNotes  []string
	BaseNotes   []string
}

// SearchResult carries one remote search response.
type SearchResult struct {
	Query      string
	Fragrances []Fragrance
	Total      int
}

// Client performs Fragella API searches with an in-memory TTL cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limit      int
	cacheTTL   time.Duration
	cache      sync.Map // map[string]cacheEntry
}

type cacheEntry struct {
	at     time.Time
	result SearchResult
}

// ErrMissingCredentials is returned when the client cannot authenticate.
var ErrMissingCredentials = errors.New("fragella client missing api key")

// NewClient constructs a Fragella client if configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.fragella.com/api/v1/fragrances"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = 2000
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limit:      limit,
		cacheTTL:   ttl,
	}, nil
}

// Search queries the catalog for the supplied term. An empty term returns the
// generic "perfume" pool. Responses are cached per normalized term.
func (c *Client) Search(ctx context.Context, term string) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, errors.New("fragella client is nil")
	}

	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		key = "perfume"
	}

	if entry, ok := c.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if time.Since(cached.at) < c.cacheTTL {
			return cached.result, nil
		}
		c.cache.Delete(key)
	}

	result, err := c.performRequest(ctx, key)
	if err != nil {
		return SearchResult{}, err
	}

	c.cache.Store(key, cacheEntry{at: time.Now(), result: result})
	return result, nil
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache() {
	if c == nil {
		return
	}
	c.cache.Range(func(key, _ any) bool {
		c.cache.Delete(key)
		return true
	})
}

func (c *Client) performRequest(ctx context.Context, term string) (SearchResult, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("limit", strconv.Itoa(c.limit))

	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint = endpoint + "&" + params.Encode()
	} else {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		// back off for 5 seconds and retry once
		select {
		case <-ctx.Done():
			return SearchResult{}, ctx.Err()
		case <-time.After(5 * time.Second):
		}
		resp.Body.Close()
		retryReq, retryErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if retryErr != nil {
			return SearchResult{}, retryErr
		}
		retryReq.Header = req.Header.Clone()
		resp, err = c.httpClient.Do(retryReq)
		if err != nil {
			return SearchResult{}, err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, fmt.Errorf("fragella api status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchResult{}, fmt.Errorf("decode fragella response: %w", err)
	}

	fragrances := make([]Fragrance, 0, len(payload.Results))
	for _, item := range payload.Results {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		record := Fragrance{
			FragellaID:  strings.TrimSpace(item.ID),
			Name:        name,
			Brand:       strings.TrimSpace(item.Brand),
			Image:       strings.TrimSpace(item.ImageURL),
			Description: strings.TrimSpace(item.Description),
			Families:    fragrance.NormalizeAll(item.Accords),
			Ingredients: trimAll(item.Ingredients),
			TopNotes:    trimAll(item.Notes.Top),
			HeartNotes:  trimAll(item.Notes.Middle),
			BaseNotes:   trimAll(item.Notes.Base),
		}
		if item.Price > 0 {
			price := item.Price
			record.Price = &price
		}
		fragrances = append(fragrances, record)
	}

	return SearchResult{
		Query:      term,
		Fragrances: fragrances,
		Total:      payload.Total,
	}, nil
}

type searchResponse struct {
	Results []searchItem `json:"results"`
	Total   int          `json:"total"`
}

type searchItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Accords     []string `json:"accords"`
	Ingredients []string `json:"ingredients"`
	Notes       struct {
		Top    []string `json:"top"`
		Middle []string `json:"middle"`
		Base   []string `json:"base"`
	} `json:"notes"`
}

func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
