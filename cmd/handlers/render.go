package handlers

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/dispatch"
	"pressroom/internal/logger"
	"pressroom/internal/render"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type renderOptions struct {
	articlesFile string
	template     string
	outputDir    string
	useAI        bool
	toStdout     bool
}

// NewRenderCmd creates the render command
func NewRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [article-id...]",
		Short: "Render articles to HTML with their assigned templates",
		Long: `Assign a template to each article and render it to an HTML file named
after the article id. With a file source and no ids, every article is rendered.

When a database is the article source, each assignment is also recorded in
the template_assignments table.

Examples:
  pressroom render --articles articles.yaml
  pressroom render abc123 --ai --output ./site
  pressroom render abc123 --template minimal --stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.articlesFile, "articles", "", "YAML or JSON articles file (default from config)")
	cmd.Flags().StringVar(&opts.template, "template", "", "Template override (classic, modern, magazine, minimal)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default from config: output.directory)")
	cmd.Flags().BoolVar(&opts.useAI, "ai", false, "Use content analysis (default from config: dispatch.use_ai_layout)")
	cmd.Flags().BoolVar(&opts.toStdout, "stdout", false, "Write HTML to stdout instead of files")

	return cmd
}

func runRender(cmd *cobra.Command, ids []string, opts renderOptions) error {
	ctx := cmd.Context()
	cfg := config.Get()
	log := logger.Get()

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

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}
	useAI := useAILayout(cmd, opts.useAI, cfg)
	out := cmd.OutOrStdout()

	for _, article := range articles {
		result, err := d.Dispatch(ctx, dispatch.Request{Article: article, UseAILayout: useAI, Template: opts.template})
		if err != nil {
			return fmt.Errorf("article %s: %w", article.ID, err)
		}

		if store.db != nil {
			if err := store.db.RecordAssignment(ctx, result.DispatchID, article.ID, result.Assignment); err != nil {
				log.Warn("Failed to record assignment", "article_id", article.ID, "error", err)
			}
		}

		if opts.toStdout {
			fmt.Fprintln(out, result.Output)
			continue
		}

		path, err := render.WriteToFile(result.Output, outputDir, outputFilename(article.ID))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s (%s) -> %s\n",
			valueStyle.Render(article.ID), result.Assignment.Template, modeLabel(result.Assignment.Mode), path)
	}

	return nil
}

// outputFilename turns an article id into a safe file name.
func outputFilename(id string) string {
	name := unsafeFilenameChars.ReplaceAllString(id, "-")
	if name == "" || name == "." || name == ".." {
		name = "article"
	}
	return name + ".html"
}
