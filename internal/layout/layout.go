// Package layout turns a content analysis into a concrete layout configuration.
package layout

import (
	"errors"
	"fmt"

	"pressroom/internal/core"
	"pressroom/internal/templates"
)

// ErrInvalidAnalysis is returned when an analysis has out-of-range fields.
var ErrInvalidAnalysis = errors.New("invalid content analysis")

// tocReadingMinutes is the reading time above which a table of contents is shown.
const tocReadingMinutes = 4

type layoutKey struct {
	contentType core.ContentType
	tone        core.Tone
}

// layoutTable picks a template for (content type, tone). Pairs not listed fall
// back to the first preferred template of the article's category.
var layoutTable = map[layoutKey]core.TemplateType{
	{core.ContentNarrative, core.ToneFormal}:         core.TemplateClassic,
	{core.ContentNarrative, core.ToneConversational}: core.TemplateMagazine,
	{core.ContentNarrative, core.ToneDramatic}:       core.TemplateMagazine,

	{core.ContentInformational, core.ToneFormal}:         core.TemplateClassic,
	{core.ContentInformational, core.ToneConversational}: core.TemplateMinimal,
	{core.ContentInformational, core.ToneTechnical}:      core.TemplateModern,

	{core.ContentHowTo, core.ToneFormal}:         core.TemplateClassic,
	{core.ContentHowTo, core.ToneConversational}: core.TemplateMinimal,
	{core.ContentHowTo, core.ToneTechnical}:      core.TemplateModern,

	{core.ContentOpinion, core.ToneFormal}:         core.TemplateClassic,
	{core.ContentOpinion, core.ToneConversational}: core.TemplateMagazine,
	{core.ContentOpinion, core.ToneDramatic}:       core.TemplateMagazine,

	{core.ContentList, core.ToneFormal}:         core.TemplateMinimal,
	{core.ContentList, core.ToneConversational}: core.TemplateModern,
	{core.ContentList, core.ToneTechnical}:      core.TemplateMinimal,
}

var typographyByTone = map[core.Tone]core.Typography{
	core.ToneFormal:         core.TypographySerif,
	core.ToneConversational: core.TypographySans,
	core.ToneTechnical:      core.TypographyMono,
	core.ToneDramatic:       core.TypographyDisplay,
}

var colorByTone = map[core.Tone]core.ColorScheme{
	core.ToneFormal:         core.ColorNeutral,
	core.ToneConversational: core.ColorWarm,
	core.ToneTechnical:      core.ColorCool,
	core.ToneDramatic:       core.ColorContrast,
}

// Synthesize maps an analysis and category to a layout configuration.
// It is pure: the same inputs always produce the same configuration.
func Synthesize(analysis core.ContentAnalysis, category string) (core.LayoutConfiguration, error) {
	if !analysis.Valid() {
		return core.LayoutConfiguration{}, fmt.Errorf("%w: type=%q tone=%q complexity=%.2f reading_time=%d",
			ErrInvalidAnalysis, analysis.ContentType, analysis.Tone, analysis.Complexity, analysis.ReadingTimeMinutes)
	}

	layoutType := LayoutFor(analysis.ContentType, analysis.Tone, category)

	return core.LayoutConfiguration{
		LayoutType:  layoutType,
		ShowTOC:     analysis.ReadingTimeMinutes > tocReadingMinutes || analysis.ContentType == core.ContentInformational,
		ShowSidebar: layoutType == core.TemplateMagazine,
		Typography:  typographyByTone[analysis.Tone],
		ColorScheme: colorByTone[analysis.Tone],
	}, nil
}

// LayoutFor returns the template the lookup table assigns to (contentType, tone),
// or the category's first preferred template when the pair is unmapped.
func LayoutFor(contentType core.ContentType, tone core.Tone, category string) core.TemplateType {
	if t, ok := layoutTable[layoutKey{contentType, tone}]; ok {
		return t
	}
	return templates.Preferred(category)[0]
}
