package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"pressroom/internal/analysis"
	"pressroom/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

// defaultConfigs apply when an assignment carries no configuration.
var defaultConfigs = map[core.TemplateType]core.LayoutConfiguration{
	core.TemplateClassic:  {LayoutType: core.TemplateClassic, Typography: core.TypographySerif, ColorScheme: core.ColorNeutral},
	core.TemplateModern:   {LayoutType: core.TemplateModern, Typography: core.TypographySans, ColorScheme: core.ColorCool},
	core.TemplateMagazine: {LayoutType: core.TemplateMagazine, ShowSidebar: true, Typography: core.TypographyDisplay, ColorScheme: core.ColorWarm},
	core.TemplateMinimal:  {LayoutType: core.TemplateMinimal, Typography: core.TypographySans, ColorScheme: core.ColorNeutral},
}

var fontStacks = map[core.Typography]string{
	core.TypographySerif:   "Georgia, Cambria, serif",
	core.TypographySans:    "system-ui, Helvetica, Arial, sans-serif",
	core.TypographyMono:    "Menlo, Consolas, monospace",
	core.TypographyDisplay: "Impact, Haettenschweiler, sans-serif",
}

type palette struct {
	background string
	foreground string
	accent     string
}

var palettes = map[core.ColorScheme]palette{
	core.ColorNeutral:  {"#ffffff", "#222222", "#555555"},
	core.ColorWarm:     {"#fff8f0", "#3b2314", "#c2410c"},
	core.ColorCool:     {"#f3f7fb", "#1e293b", "#2563eb"},
	core.ColorContrast: {"#000000", "#ffffff", "#facc15"},
}

type tocEntry struct {
	Level int
	ID    string
	Text  string
}

type page struct {
	Template       core.TemplateType
	Title          string
	Category       string
	Body           template.HTML
	Style          template.CSS
	Typography     core.Typography
	ColorScheme    core.ColorScheme
	ShowTOC        bool
	ShowSidebar    bool
	TOC            []tocEntry
	WordCount      int
	ReadingMinutes int
}

// HTMLRenderer renders markdown or HTML article bodies into a standalone page
// for one template.
type HTMLRenderer struct {
	template core.TemplateType
	page     *template.Template
}

// NewHTMLRenderer parses the page skeleton for t. It panics if t has no
// embedded skeleton, which only happens for values outside the closed set.
func NewHTMLRenderer(t core.TemplateType) *HTMLRenderer {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+string(t)+".html"))
	return &HTMLRenderer{template: t, page: tmpl}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(article core.ArticleContent, cfg *core.LayoutConfiguration) (string, error) {
	effective := defaultConfigs[r.template]
	if cfg != nil {
		effective = *cfg
	}

	body, toc := markdownToHTML(article.Content)
	words := analysis.WordCount(article.Content)

	data := page{
		Template:       r.template,
		Title:          article.Title,
		Category:       article.Category,
		Body:           body,
		Style:          styleFor(effective),
		Typography:     effective.Typography,
		ColorScheme:    effective.ColorScheme,
		ShowTOC:        effective.ShowTOC,
		ShowSidebar:    effective.ShowSidebar,
		TOC:            toc,
		WordCount:      words,
		ReadingMinutes: analysis.ReadingTime(words, analysis.DefaultWordsPerMinute),
	}

	var buf bytes.Buffer
	if err := r.page.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", r.template, err)
	}
	return buf.String(), nil
}

// bodyPolicy strips scripts, event handlers and other active content that raw
// HTML in an article body could carry. Heading ids survive for the TOC anchors.
var bodyPolicy = bluemonday.UGCPolicy().AddTargetBlankToFullyQualifiedLinks(true)

// markdownToHTML renders the body and collects its headings for a table of contents.
func markdownToHTML(text string) (template.HTML, []tocEntry) {
	if strings.TrimSpace(text) == "" {
		return template.HTML(""), nil
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := mdParser.Parse([]byte(text))

	var toc []tocEntry
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		heading, ok := node.(*ast.Heading)
		if !ok || !entering || heading.HeadingID == "" {
			return ast.GoToNext
		}
		toc = append(toc, tocEntry{Level: heading.Level, ID: heading.HeadingID, Text: headingText(heading)})
		return ast.SkipChildren
	})

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return template.HTML(bodyPolicy.SanitizeBytes(markdown.Render(doc, renderer))), toc
}

func headingText(heading *ast.Heading) string {
	var sb strings.Builder
	ast.WalkFunc(heading, func(node ast.Node, entering bool) ast.WalkStatus {
		if leaf := node.AsLeaf(); leaf != nil && entering {
			sb.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(sb.String())
}

// styleFor builds the CSS custom properties for a configuration. Values come
// from fixed tables, never from article input.
func styleFor(cfg core.LayoutConfiguration) template.CSS {
	font, ok := fontStacks[cfg.Typography]
	if !ok {
		font = fontStacks[core.TypographySans]
	}
	colors, ok := palettes[cfg.ColorScheme]
	if !ok {
		colors = palettes[core.ColorNeutral]
	}

	return template.CSS(fmt.Sprintf(
		":root{--font:%s;--bg:%s;--fg:%s;--accent:%s}"+
			"body{margin:0;font-family:var(--font);background:var(--bg);color:var(--fg);line-height:1.6}"+
			"a{color:var(--accent)}",
		font, colors.background, colors.foreground, colors.accent,
	))
}
