package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pressroom/internal/core"
)

var (
	headingStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
	valueStyle         = lipgloss.NewStyle().Bold(true)
	aiStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deterministicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// assignmentRow is the --json shape of one assignment.
type assignmentRow struct {
	ArticleID string `json:"articleId"`
	Category  string `json:"category"`
	core.TemplateAssignment
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func field(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

func modeLabel(mode core.AssignmentMode) string {
	if mode == core.ModeAI {
		return aiStyle.Render(string(mode))
	}
	return deterministicStyle.Render(string(mode))
}

func printAssignment(w io.Writer, article core.ArticleContent, assignment core.TemplateAssignment) {
	lines := []string{
		headingStyle.Render(titleOrID(article)),
		field("Article", article.ID),
		field("Category", article.Category),
		field("Template", assignment.Template),
		labelStyle.Render("Mode") + modeLabel(assignment.Mode),
	}
	if cfg := assignment.Configuration; cfg != nil {
		lines = append(lines, layoutLines(*cfg)...)
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func layoutLines(cfg core.LayoutConfiguration) []string {
	return []string{
		field("Typography", cfg.Typography),
		field("Color scheme", cfg.ColorScheme),
		field("TOC", cfg.ShowTOC),
		field("Sidebar", cfg.ShowSidebar),
	}
}

func printAnalysis(w io.Writer, article core.ArticleContent, result analyzeResult) {
	lines := []string{
		headingStyle.Render(titleOrID(article)),
		field("Source", result.Source),
		field("Content type", result.Analysis.ContentType),
		field("Tone", result.Analysis.Tone),
		field("Complexity", fmt.Sprintf("%.2f", result.Analysis.Complexity)),
		field("Reading time", fmt.Sprintf("%d min", result.Analysis.ReadingTimeMinutes)),
		field("Layout", result.Layout.LayoutType),
	}
	lines = append(lines, layoutLines(result.Layout)...)
	if result.Fallback != "" {
		lines = append(lines, warnStyle.Render("analysis unavailable ("+result.Fallback+"), showing defaults"))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func titleOrID(article core.ArticleContent) string {
	if article.Title != "" {
		return article.Title
	}
	return article.ID
}
