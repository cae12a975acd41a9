package handlers

import (
	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/dispatch"
)

type assignOptions struct {
	articlesFile string
	template     string
	useAI        bool
	asJSON       bool
	concurrency  int
}

// NewAssignCmd creates the assign command
func NewAssignCmd() *cobra.Command {
	var opts assignOptions

	cmd := &cobra.Command{
		Use:   "assign [article-id...]",
		Short: "Assign templates to articles",
		Long: `Assign a presentation template to one or more articles.

Articles are read from --articles, articles.file, or the database. With a file
source and no ids, every article in the file is assigned.

Examples:
  # Deterministic assignment for two articles
  pressroom assign --articles articles.yaml abc123 post-1

  # Content analysis driven assignment, as JSON
  pressroom assign --articles articles.yaml --ai --json

  # Force a template
  pressroom assign abc123 --template magazine`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.articlesFile, "articles", "", "YAML or JSON articles file (default from config)")
	cmd.Flags().StringVar(&opts.template, "template", "", "Template override (classic, modern, magazine, minimal)")
	cmd.Flags().BoolVar(&opts.useAI, "ai", false, "Use content analysis (default from config: dispatch.use_ai_layout)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print assignments as JSON")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Parallel assignments (default from config: dispatch.batch_concurrency)")

	return cmd
}

func runAssign(cmd *cobra.Command, ids []string, opts assignOptions) error {
	ctx := cmd.Context()
	cfg := config.Get()

	store, err := openArticles(ctx, cfg, opts.articlesFile)
	if err != nil {
		return err
	}
	defer store.Close()

	articles, err := store.collect(ctx, ids)
	if err != nil {
		return err
	}

	d, cleanup, err := buildDispatcher(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	useAI := useAILayout(cmd, opts.useAI, cfg)
	reqs := make([]dispatch.Request, len(articles))
	for i, article := range articles {
		reqs[i] = dispatch.Request{Article: article, UseAILayout: useAI, Template: opts.template}
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Dispatch.BatchConcurrency
	}
	assignments := d.AssignBatch(ctx, reqs, concurrency)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		rows := make([]assignmentRow, len(articles))
		for i, article := range articles {
			rows[i] = assignmentRow{ArticleID: article.ID, Category: article.Category, TemplateAssignment: assignments[i]}
		}
		return printJSON(out, rows)
	}

	for i, article := range articles {
		printAssignment(out, article, assignments[i])
	}
	return nil
}
