package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pressroom/internal/analysis"
	"pressroom/internal/config"
	"pressroom/internal/core"
	"pressroom/internal/dispatch"
	"pressroom/internal/llm"
	"pressroom/internal/logger"
	"pressroom/internal/persistence"
	"pressroom/internal/render"
)

var (
	errNoArticleSource = errors.New("no article source configured: pass --articles, or set articles.file or database.connection_string")
	errNoDatabase      = errors.New("database connection string not configured: set database.connection_string or DATABASE_URL")
)

// articleStore is the article source a command reads from, remembering which
// backend it is so callers can list file articles or record to the database.
type articleStore struct {
	persistence.ArticleSource
	file *persistence.FileSource
	db   *persistence.PostgresStore
}

// openArticles prefers an explicit file, then the configured file, then the database.
func openArticles(ctx context.Context, cfg *config.Config, file string) (*articleStore, error) {
	if file == "" {
		file = cfg.Articles.File
	}

	if file != "" {
		src, err := persistence.NewFileSource(file)
		if err != nil {
			return nil, err
		}
		return &articleStore{ArticleSource: src, file: src}, nil
	}

	if cfg.Database.ConnectionString != "" {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &articleStore{ArticleSource: db, db: db}, nil
	}

	return nil, errNoArticleSource
}

func (s *articleStore) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
}

// collect resolves ids, or every article when ids is empty and the source is a file.
func (s *articleStore) collect(ctx context.Context, ids []string) ([]core.ArticleContent, error) {
	if len(ids) == 0 {
		if s.file == nil {
			return nil, errors.New("article ids are required when reading from the database")
		}
		all := s.file.Articles()
		if len(all) == 0 {
			return nil, fmt.Errorf("no articles in %s", s.file.Path())
		}
		return all, nil
	}

	articles := make([]core.ArticleContent, 0, len(ids))
	for _, id := range ids {
		article, err := s.GetArticle(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", id, err)
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*persistence.PostgresStore, error) {
	if cfg.Database.ConnectionString == "" {
		return nil, errNoDatabase
	}

	store, err := persistence.NewPostgresStore(ctx, cfg.Database.ConnectionString, cfg.Database.ConnectTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}

// buildAnalyzer returns the heuristic analyzer, or a Gemini-backed one when
// analysis.use_inference is on. The cleanup func releases the LLM client.
func buildAnalyzer(ctx context.Context, cfg *config.Config) (*analysis.Analyzer, func(), error) {
	opts := analysis.Options{
		Timeout:        cfg.Analysis.AnalysisTimeout(),
		WordsPerMinute: cfg.Analysis.WordsPerMin,
	}

	if !cfg.Analysis.UseInference {
		return analysis.NewAnalyzer(nil, opts), func() {}, nil
	}

	client, err := llm.NewClient(ctx, llm.Options{
		APIKey: cfg.AI.Gemini.APIKey,
		Model:  cfg.AI.Gemini.Model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	inference := analysis.NewLLMInference(
		llm.NewTracedClient(client, client.ModelName()),
		analysis.WithMaxTokens(cfg.AI.Gemini.MaxTokens),
		analysis.WithTemperature(cfg.AI.Gemini.Temperature),
	)
	return analysis.NewAnalyzer(inference, opts), client.Close, nil
}

// buildDispatcher wires the analyzer and the default HTML renderers. tracker may be nil.
func buildDispatcher(ctx context.Context, cfg *config.Config, tracker dispatch.Tracker) (*dispatch.Dispatcher, func(), error) {
	analyzer, cleanup, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	d := dispatch.New(analyzer, dispatch.Options{
		Renderers: render.DefaultRegistry(),
		Tracker:   tracker,
	})
	return d, cleanup, nil
}

// useAILayout returns the --ai flag when given, else the configured default.
func useAILayout(cmd *cobra.Command, flag bool, cfg *config.Config) bool {
	if cmd.Flags().Changed("ai") {
		return flag
	}
	return cfg.Dispatch.UseAILayout
}
