package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"pressroom/internal/analysis"
	"pressroom/internal/config"
	"pressroom/internal/core"
	"pressroom/internal/layout"
)

// analyzeResult is what the analyze command reports for one article.
type analyzeResult struct {
	ArticleID string                   `json:"articleId"`
	Source    string                   `json:"source"` // "inference" or "heuristic"
	Analysis  core.ContentAnalysis     `json:"analysis"`
	Layout    core.LayoutConfiguration `json:"layout"`
	Fallback  string                   `json:"fallback,omitempty"` // failure reason when defaults were used
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var (
		articlesFile string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <article-id>",
		Short: "Show the content analysis and layout for an article",
		Long: `Run content analysis on an article and show the layout configuration the
ai assignment path would derive from it.

Uses Gemini when analysis.use_inference is enabled, local heuristics otherwise.

Examples:
  pressroom analyze --articles articles.yaml abc123
  pressroom analyze abc123 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], articlesFile, asJSON)
		},
	}

	cmd.Flags().StringVar(&articlesFile, "articles", "", "YAML or JSON articles file (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")

	return cmd
}

func runAnalyze(cmd *cobra.Command, id, articlesFile string, asJSON bool) error {
	ctx := cmd.Context()
	cfg := config.Get()

	store, err := openArticles(ctx, cfg, articlesFile)
	if err != nil {
		return err
	}
	defer store.Close()

	article, err := store.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("article %s: %w", id, err)
	}

	analyzer, cleanup, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result := analyzeResult{ArticleID: article.ID, Source: analysisSource(analyzer)}
	result.Analysis, err = analyzer.Analyze(ctx, article.Content, article.Title, article.Category)
	if err != nil {
		result.Fallback = analysis.FailureReason(err)
	}

	result.Layout, err = layout.Synthesize(result.Analysis, article.Category)
	if err != nil {
		return fmt.Errorf("failed to synthesize layout: %w", err)
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printAnalysis(cmd.OutOrStdout(), article, result)
	return nil
}

func analysisSource(analyzer *analysis.Analyzer) string {
	if analyzer.UsesInference() {
		return "inference"
	}
	return "heuristic"
}
