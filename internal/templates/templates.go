// Package templates owns the closed template set's category preferences and the
// deterministic, hash-based template selection used whenever content analysis is
// skipped or fails.
package templates

import (
	"sort"
	"unicode/utf16"

	"pressroom/internal/core"
)

// categoryTemplates maps an editorial category to its preferred templates.
// Built once at package init and never written afterwards.
var categoryTemplates = map[string][]core.TemplateType{
	"Technology":    {core.TemplateModern, core.TemplateClassic},
	"Business":      {core.TemplateClassic, core.TemplateMinimal},
	"Finance":       {core.TemplateClassic, core.TemplateMinimal},
	"Lifestyle":     {core.TemplateMagazine, core.TemplateModern},
	"Entertainment": {core.TemplateMagazine},
	"Sports":        {core.TemplateModern, core.TemplateMagazine},
	"Science":       {core.TemplateClassic, core.TemplateModern},
	"Health":        {core.TemplateMinimal, core.TemplateClassic},
	"Travel":        {core.TemplateMagazine, core.TemplateMinimal},
	"Food":          {core.TemplateMagazine, core.TemplateMinimal},
	"Politics":      {core.TemplateClassic},
	"Opinion":       {core.TemplateMinimal, core.TemplateClassic},
}

// defaultTemplates is used for categories missing from the table.
var defaultTemplates = []core.TemplateType{core.TemplateClassic, core.TemplateModern}

// Preferred returns the preferred templates for a category. Lookup is exact and
// case-sensitive; unknown categories get the default two-element list.
// The returned slice is a copy.
func Preferred(category string) []core.TemplateType {
	list, ok := categoryTemplates[category]
	if !ok {
		list = defaultTemplates
	}
	return append([]core.TemplateType(nil), list...)
}

// Categories returns the categories that have an explicit preference list,
// sorted by name.
func Categories() []string {
	names := make([]string, 0, len(categoryTemplates))
	for name := range categoryTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hash computes the stable id hash used for template selection.
//
// The algorithm is fixed so that assignments survive reimplementation:
// iterate the UTF-16 code units of the id (equal to code points inside the BMP)
// and accumulate hash = hash*31 + unit in a signed 32-bit integer, letting it wrap.
// An empty id hashes to 0.
func Hash(stableID string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(stableID)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}

// Select deterministically picks a template for (category, stableID).
// The result is a pure function of its inputs and always a member of the
// closed template set.
func Select(category, stableID string) core.TemplateType {
	list, ok := categoryTemplates[category]
	if !ok {
		list = defaultTemplates
	}
	return list[indexFor(Hash(stableID), len(list))]
}

// indexFor returns |hash| mod n. The absolute value is taken in 64 bits so
// math.MinInt32 does not overflow back to a negative number.
func indexFor(hash int32, n int) int {
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
