package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"pressroom/internal/core"
)

// PostgresStore reads articles from and records assignments to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies it within timeout.
func NewPostgresStore(ctx context.Context, connectionString string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing pool.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetArticle implements ArticleSource.
func (p *PostgresStore) GetArticle(ctx context.Context, id string) (core.ArticleContent, error) {
	var article core.ArticleContent
	err := p.db.QueryRowContext(ctx,
		`SELECT id, title, category, content FROM articles WHERE id = $1`, id,
	).Scan(&article.ID, &article.Title, &article.Category, &article.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ArticleContent{}, ErrArticleNotFound
	}
	if err != nil {
		return core.ArticleContent{}, fmt.Errorf("query article %s failed: %w", id, err)
	}
	return article, nil
}

// SaveArticle inserts or updates an article.
func (p *PostgresStore) SaveArticle(ctx context.Context, article core.ArticleContent) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO articles (id, title, category, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			content = EXCLUDED.content,
			updated_at = NOW()`,
		article.ID, article.Title, article.Category, article.Content,
	)
	if err != nil {
		return fmt.Errorf("save article %s failed: %w", article.ID, err)
	}
	return nil
}

// RecordAssignment appends a dispatched assignment to the assignment log.
func (p *PostgresStore) RecordAssignment(ctx context.Context, dispatchID, articleID string, assignment core.TemplateAssignment) error {
	var configuration []byte
	if assignment.Configuration != nil {
		var err error
		configuration, err = json.Marshal(assignment.Configuration)
		if err != nil {
			return fmt.Errorf("marshal configuration failed: %w", err)
		}
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO template_assignments (dispatch_id, article_id, template, mode, configuration)
		VALUES ($1, $2, $3, $4, $5)`,
		dispatchID, articleID, string(assignment.Template), string(assignment.Mode), nullableJSON(configuration),
	)
	if err != nil {
		return fmt.Errorf("record assignment %s failed: %w", dispatchID, err)
	}
	return nil
}

func nullableJSON(data []byte) any {
	if data == nil {
		return nil
	}
	return string(data)
}

// Ping checks the connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
