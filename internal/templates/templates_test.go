package templates

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"pressroom/internal/core"
)

func TestHashKnownValues(t *testing.T) {
	testCases := []struct {
		id       string
		expected int32
	}{
		{"", 0},
		{"a", 97},
		{"x", 120},
		{"abc123", -1424436592},
		{"article-42", 164902581},
		{"post-1", -982452668},
	}

	for _, tc := range testCases {
		if got := Hash(tc.id); got != tc.expected {
			t.Errorf("Hash(%q) = %d, want %d", tc.id, got, tc.expected)
		}
	}
}

func TestHashUsesUTF16CodeUnits(t *testing.T) {
	// U+1F600 is a surrogate pair: 0xD83D 0xDE00.
	expected := int32(0xD83D)*31 + int32(0xDE00)
	if got := Hash("😀"); got != expected {
		t.Errorf("Hash of astral rune = %d, want %d", got, expected)
	}
}

func TestIndexForHandlesMinInt32(t *testing.T) {
	if got := indexFor(math.MinInt32, 2); got != 0 {
		t.Errorf("indexFor(MinInt32, 2) = %d, want 0", got)
	}
	if got := indexFor(math.MinInt32, 3); got != 2 {
		t.Errorf("indexFor(MinInt32, 3) = %d, want 2", got)
	}
	if got := indexFor(-7, 2); got != 1 {
		t.Errorf("indexFor(-7, 2) = %d, want 1", got)
	}
}

func TestSelectTechnologyScenario(t *testing.T) {
	first := Select("Technology", "abc123")
	if first != core.TemplateModern {
		t.Fatalf("Select(Technology, abc123) = %s, want modern", first)
	}

	for i := 0; i < 1000; i++ {
		if got := Select("Technology", "abc123"); got != first {
			t.Fatalf("call %d returned %s, want %s", i, got, first)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	categories := append(Categories(), "Unknown", "", "technology")
	ids := []string{"", "a", "abc123", "post-1", "ünïcödé", "😀-id", "00000000-0000-0000-0000-000000000000"}

	for _, category := range categories {
		for _, id := range ids {
			first := Select(category, id)
			for i := 0; i < 1000; i++ {
				if got := Select(category, id); got != first {
					t.Fatalf("Select(%q, %q) changed from %s to %s", category, id, first, got)
				}
			}
		}
	}
}

func TestSelectClosedRange(t *testing.T) {
	categories := append(Categories(), "Unknown", "")

	for _, category := range categories {
		preferred := Preferred(category)
		for i := 0; i < 500; i++ {
			id := fmt.Sprintf("article-%d", i)
			got := Select(category, id)
			if !got.Valid() {
				t.Fatalf("Select(%q, %q) = %q, not a valid template", category, id, got)
			}
			if !contains(preferred, got) {
				t.Fatalf("Select(%q, %q) = %s, not in preferred list %v", category, id, got, preferred)
			}
		}
		if got := Select(category, ""); got != preferred[0] {
			t.Errorf("empty id should map to the first preferred template for %q, got %s", category, got)
		}
	}
}

func TestPreferredUnknownCategory(t *testing.T) {
	got := Preferred("Gardening")
	if len(got) != 2 || got[0] != core.TemplateClassic || got[1] != core.TemplateModern {
		t.Errorf("unknown category should use default list, got %v", got)
	}

	// Lookup is exact.
	if Preferred("technology")[0] != core.TemplateClassic {
		t.Error("lowercase category should not match Technology")
	}
}

func TestPreferredReturnsCopy(t *testing.T) {
	list := Preferred("Technology")
	list[0] = core.TemplateMagazine

	if Preferred("Technology")[0] != core.TemplateModern {
		t.Error("Preferred should not expose the category table")
	}
}

func TestCategoriesSorted(t *testing.T) {
	got := Categories()
	if len(got) != 12 {
		t.Fatalf("expected 12 categories, got %d", len(got))
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("categories should be sorted, got %v", got)
	}
	if got[0] != "Business" || got[len(got)-1] != "Travel" {
		t.Errorf("unexpected bounds %s..%s", got[0], got[len(got)-1])
	}
}

func TestCategoryTableEntriesAreValid(t *testing.T) {
	for _, category := range Categories() {
		list := Preferred(category)
		if len(list) < 1 || len(list) > 2 {
			t.Errorf("category %s should have 1-2 templates, got %d", category, len(list))
		}
		for _, tmpl := range list {
			if !tmpl.Valid() {
				t.Errorf("category %s has invalid template %s", category, tmpl)
			}
		}
	}
}

func contains(list []core.TemplateType, t core.TemplateType) bool {
	for _, item := range list {
		if item == t {
			return true
		}
	}
	return false
}
