package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/core"
	"pressroom/internal/dispatch"
	"pressroom/internal/tui"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	var (
		articlesFile string
		useAI        bool
	)

	cmd := &cobra.Command{
		Use:   "browse [article-id...]",
		Short: "Browse articles and their assignments in the terminal",
		Long: `Open an interactive browser listing articles with the template each one is
assigned. Press 'a' to switch between the deterministic and ai paths.

Example:
  pressroom browse --articles articles.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()

			store, err := openArticles(ctx, cfg, articlesFile)
			if err != nil {
				return err
			}
			defer store.Close()

			articles, err := store.collect(ctx, args)
			if err != nil {
				return err
			}

			d, cleanup, err := buildDispatcher(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			assign := func(ctx context.Context, article core.ArticleContent, ai bool) core.TemplateAssignment {
				return d.Assign(ctx, dispatch.Request{Article: article, UseAILayout: ai})
			}
			return tui.Run(ctx, articles, assign, useAILayout(cmd, useAI, cfg))
		},
	}

	cmd.Flags().StringVar(&articlesFile, "articles", "", "YAML or JSON articles file (default from config)")
	cmd.Flags().BoolVar(&useAI, "ai", false, "Start on the ai path (default from config: dispatch.use_ai_layout)")

	return cmd
}
