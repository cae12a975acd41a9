// Package tui is a terminal browser for articles and their template assignments.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pressroom/internal/core"
)

// AssignFunc produces an assignment for one article.
type AssignFunc func(ctx context.Context, article core.ArticleContent, useAI bool) core.TemplateAssignment

type assignmentKey struct {
	index int
	ai    bool
}

// assignedMsg delivers an assignment computed off the update loop.
type assignedMsg struct {
	key        assignmentKey
	assignment core.TemplateAssignment
}

// Model is the browser state.
type Model struct {
	ctx         context.Context
	articles    []core.ArticleContent
	assign      AssignFunc
	assignments map[assignmentKey]core.TemplateAssignment
	pending     map[assignmentKey]bool
	selectedIdx int
	useAI       bool
	width       int
	height      int
	quitting    bool
}

// NewModel returns the initial browser state.
func NewModel(ctx context.Context, articles []core.ArticleContent, assign AssignFunc, useAI bool) Model {
	return Model{
		ctx:         ctx,
		articles:    articles,
		assign:      assign,
		assignments: make(map[assignmentKey]core.TemplateAssignment),
		pending:     make(map[assignmentKey]bool),
		useAI:       useAI,
	}
}

// Init requests the assignment for the first article.
func (m Model) Init() tea.Cmd {
	return m.request()
}

// request returns a command computing the current selection's assignment, or
// nil when it is cached or in flight. Callers own the pending bookkeeping.
func (m Model) request() tea.Cmd {
	if len(m.articles) == 0 {
		return nil
	}
	key := assignmentKey{index: m.selectedIdx, ai: m.useAI}
	if _, ok := m.assignments[key]; ok || m.pending[key] {
		return nil
	}
	m.pending[key] = true

	article := m.articles[key.index]
	ctx, assign := m.ctx, m.assign
	return func() tea.Msg {
		return assignedMsg{key: key, assignment: assign(ctx, article, key.ai)}
	}
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case assignedMsg:
		delete(m.pending, msg.key)
		m.assignments[msg.key] = msg.assignment

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.articles)-1 {
				m.selectedIdx++
			}
		case "a":
			m.useAI = !m.useAI
		}
		return m, m.request()
	}

	return m, nil
}

// Selected returns the current assignment, if it has been computed.
func (m Model) Selected() (core.TemplateAssignment, bool) {
	a, ok := m.assignments[assignmentKey{index: m.selectedIdx, ai: m.useAI}]
	return a, ok
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	paneWidth := m.width/2 - 5
	if paneWidth < 20 {
		paneWidth = 36
	}
	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	var list strings.Builder
	list.WriteString("Articles\n\n")
	if len(m.articles) == 0 {
		list.WriteString("No articles loaded.")
	}
	for i, article := range m.articles {
		line := fmt.Sprintf("  %s [%s]", displayTitle(article), article.Category)
		if i == m.selectedIdx {
			line = cursorStyle.Render("> " + line[2:])
		}
		list.WriteString(line + "\n")
	}

	leftPane := listStyle.Render(list.String())
	rightPane := detailStyle.Render(m.detail())
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	mode := "deterministic"
	if m.useAI {
		mode = "ai"
	}
	help := fmt.Sprintf("\n\n[↑/k] Up | [↓/j] Down | [a] Toggle analysis (%s) | [q] Quit", mode)

	return docStyle.Render(mainContent + help)
}

func (m Model) detail() string {
	if len(m.articles) == 0 {
		return "Nothing to assign."
	}

	article := m.articles[m.selectedIdx]
	a, ok := m.Selected()
	if !ok {
		return fmt.Sprintf("%s\n\nAssigning...", displayTitle(article))
	}

	lines := []string{
		displayTitle(article),
		"",
		"Template:  " + string(a.Template),
		"Mode:      " + string(a.Mode),
	}
	if cfg := a.Configuration; cfg != nil {
		lines = append(lines,
			"Typography: "+string(cfg.Typography),
			"Colors:     "+string(cfg.ColorScheme),
			fmt.Sprintf("TOC: %t  Sidebar: %t", cfg.ShowTOC, cfg.ShowSidebar),
		)
	}
	return strings.Join(lines, "\n")
}

func displayTitle(article core.ArticleContent) string {
	if article.Title != "" {
		return article.Title
	}
	return article.ID
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(ctx context.Context, articles []core.ArticleContent, assign AssignFunc, useAI bool) error {
	p := tea.NewProgram(NewModel(ctx, articles, assign, useAI), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
