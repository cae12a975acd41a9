package core

// ArticleContent is the read-only article handed to the pipeline by a storage collaborator.
type ArticleContent struct {
	ID       string `json:"id" yaml:"id"`             // Stable identifier, drives deterministic selection
	Title    string `json:"title" yaml:"title"`       // Article title
	Category string `json:"category" yaml:"category"` // Editorial category (e.g., "Technology")
	Content  string `json:"content" yaml:"content"`   // Body text (plain, markdown or HTML)
}

// ContentType classifies what kind of article a text is.
type ContentType string

const (
	ContentNarrative     ContentType = "narrative"
	ContentInformational ContentType = "informational"
	ContentHowTo         ContentType = "howto"
	ContentOpinion       ContentType = "opinion"
	ContentList          ContentType = "list"
)

// Tone describes the register an article is written in.
type Tone string

const (
	ToneFormal         Tone = "formal"
	ToneConversational Tone = "conversational"
	ToneTechnical      Tone = "technical"
	ToneDramatic       Tone = "dramatic"
)

// TemplateType is one of the closed set of visual templates.
type TemplateType string

const (
	TemplateClassic  TemplateType = "classic"
	TemplateModern   TemplateType = "modern"
	TemplateMagazine TemplateType = "magazine"
	TemplateMinimal  TemplateType = "minimal"
)

// Typography is the font family palette a layout uses.
type Typography string

const (
	TypographySerif   Typography = "serif"
	TypographySans    Typography = "sans"
	TypographyMono    Typography = "mono"
	TypographyDisplay Typography = "display"
)

// ColorScheme is the color palette a layout uses.
type ColorScheme string

const (
	ColorNeutral  ColorScheme = "neutral"
	ColorWarm     ColorScheme = "warm"
	ColorCool     ColorScheme = "cool"
	ColorContrast ColorScheme = "contrast"
)

// AssignmentMode records which path produced a TemplateAssignment.
type AssignmentMode string

const (
	ModeAI            AssignmentMode = "ai"
	ModeDeterministic AssignmentMode = "deterministic"
)

// ContentAnalysis holds the structured signals extracted from an article.
type ContentAnalysis struct {
	ContentType        ContentType `json:"contentType"`
	Tone               Tone        `json:"tone"`
	Complexity         float64     `json:"complexity"`         // 0.0 (simple) to 1.0 (dense)
	ReadingTimeMinutes int         `json:"readingTimeMinutes"` // Always >= 1
}

// LayoutConfiguration is the typed set of toggles passed to a renderer.
type LayoutConfiguration struct {
	LayoutType  TemplateType `json:"layoutType"`
	ShowTOC     bool         `json:"showTOC"`
	ShowSidebar bool         `json:"showSidebar"`
	Typography  Typography   `json:"typography"`
	ColorScheme ColorScheme  `json:"colorScheme"`
}

// TemplateAssignment is the final decision for one article.
// Configuration is nil when the assignment did not come from content analysis.
type TemplateAssignment struct {
	Template      TemplateType         `json:"template"`
	Configuration *LayoutConfiguration `json:"configuration"`
	Mode          AssignmentMode       `json:"mode"`
}

var (
	contentTypes = []ContentType{ContentNarrative, ContentInformational, ContentHowTo, ContentOpinion, ContentList}
	tones        = []Tone{ToneFormal, ToneConversational, ToneTechnical, ToneDramatic}
	templates    = []TemplateType{TemplateClassic, TemplateModern, TemplateMagazine, TemplateMinimal}
)

// ContentTypes returns every content type.
func ContentTypes() []ContentType {
	return append([]ContentType(nil), contentTypes...)
}

// Tones returns every tone.
func Tones() []Tone {
	return append([]Tone(nil), tones...)
}

// Templates returns the closed template set.
func Templates() []TemplateType {
	return append([]TemplateType(nil), templates...)
}

// Valid reports whether c is a member of the content type enum.
func (c ContentType) Valid() bool {
	switch c {
	case ContentNarrative, ContentInformational, ContentHowTo, ContentOpinion, ContentList:
		return true
	}
	return false
}

// Valid reports whether t is a member of the tone enum.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneConversational, ToneTechnical, ToneDramatic:
		return true
	}
	return false
}

// Valid reports whether t is a member of the template enum.
func (t TemplateType) Valid() bool {
	switch t {
	case TemplateClassic, TemplateModern, TemplateMagazine, TemplateMinimal:
		return true
	}
	return false
}

func (t Typography) Valid() bool {
	switch t {
	case TypographySerif, TypographySans, TypographyMono, TypographyDisplay:
		return true
	}
	return false
}

func (c ColorScheme) Valid() bool {
	switch c {
	case ColorNeutral, ColorWarm, ColorCool, ColorContrast:
		return true
	}
	return false
}

// ParseTemplateType converts a caller-supplied name to a TemplateType.
// Matching is exact; the second result is false for anything outside the enum.
func ParseTemplateType(s string) (TemplateType, bool) {
	t := TemplateType(s)
	return t, t.Valid()
}

// ParseContentType converts a name to a ContentType.
func ParseContentType(s string) (ContentType, bool) {
	c := ContentType(s)
	return c, c.Valid()
}

// ParseTone converts a name to a Tone.
func ParseTone(s string) (Tone, bool) {
	t := Tone(s)
	return t, t.Valid()
}

// Valid reports whether every field of the analysis is within its documented range.
func (a ContentAnalysis) Valid() bool {
	return a.ContentType.Valid() &&
		a.Tone.Valid() &&
		a.Complexity >= 0 && a.Complexity <= 1 &&
		a.ReadingTimeMinutes >= 1
}
