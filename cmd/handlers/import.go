package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/persistence"
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load articles from a YAML or JSON file into the database",
		Long: `Upsert every article in a YAML or JSON file into the articles table.

The file holds either a list of articles or a mapping with an "articles" list;
each article needs an id.

Example:
  pressroom import articles.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := persistence.NewFileSource(args[0])
			if err != nil {
				return err
			}

			db, err := openDatabase(ctx, config.Get())
			if err != nil {
				return err
			}
			defer db.Close()

			articles := src.Articles()
			for _, article := range articles {
				if err := db.SaveArticle(ctx, article); err != nil {
					return fmt.Errorf("failed to import article %s: %w", article.ID, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s articles from %s\n", valueStyle.Render(fmt.Sprint(len(articles))), src.Path())
			return nil
		},
	}
}
