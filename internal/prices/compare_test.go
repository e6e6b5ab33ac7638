package prices

import (
	"strings"
	"testing"
)

func TestBuildSearchURL(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		perfume  string
		brand    string
		fallback string
		expected string
	}{
		{
			"known pattern",
			"niceone", "Oud Royal", "Arabian Oud", "https://niceonesa.com",
			"https://niceonesa.com/search?type=product&q=Arabian+Oud+Oud+Royal&utm_source=askseba",
		},
		{
			"goldenscent pattern",
			"goldenscent", "Musk", "Al Rehab", "",
			"https://www.goldenscent.com/catalogsearch/result/?q=Al+Rehab+Musk&utm_source=askseba",
		},
		{
			"unknown shop plain fallback",
			"someshop", "Musk", "Al Rehab", "https://example.com",
			"https://example.com?q=Al+Rehab+Musk&utm_source=askseba",
		},
		{
			"unknown shop fallback with query",
			"someshop", "Musk", "Al Rehab", "https://example.com/search?lang=ar",
			"https://example.com/search?lang=ar&q=Al+Rehab+Musk&utm_source=askseba",
		},
		{
			"unknown shop no fallback",
			"someshop", "Musk", "Al Rehab", "",
			"?q=Al+Rehab+Musk&utm_source=askseba",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildSearchURL(tc.slug, tc.perfume, tc.brand, tc.fallback)
			if got != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, got)
			}
		})
	}
}

func TestBuildSearchURLEscapesQuery(t *testing.T) {
	got := BuildSearchURL("faces", "Rose & Oud", "Maison", "")
	if strings.Contains(got, " ") || strings.Contains(got, "&utm_source=askseba&") {
		t.Fatalf("query not escaped: %s", got)
	}
	if !strings.Contains(got, "q=Maison+Rose+%26+Oud") {
		t.Fatalf("expected escaped query in %s", got)
	}
}

func TestDisplayIndex(t *testing.T) {
	if displayIndex("goldenscent") >= displayIndex("niceone") {
		t.Fatal("goldenscent must rank before niceone")
	}
	if displayIndex("unknown") <= displayIndex("lojastore") {
		t.Fatal("unknown shops must rank last")
	}
}
