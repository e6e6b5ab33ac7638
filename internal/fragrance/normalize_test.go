package fragrance

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected FamilyKey
	}{
		{"canonical", "floral", Floral},
		{"case and spacing", "  FLORAL  ", Floral},
		{"fragella fougere", "fougere", Fresh},
		{"fragella fruity", "fruity", Citrus},
		{"white floral", "white floral", Floral},
		{"arabic floral", "زهري", Floral},
		{"arabic woody", "خشبي", Woody},
		{"arabic chypre", "شيبر", Chypre},
		{"unknown", "something else", Default},
		{"empty", "", Default},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); got != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, got)
			}
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"Fruity", "citrus", "nonsense", "fougere", "زهري"})
	expected := []string{"citrus", "fresh", "floral"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v got %v", expected, got)
		}
	}
}
