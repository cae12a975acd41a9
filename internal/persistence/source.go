// Package persistence provides the upstream article sources and the
// assignment log.
package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pressroom/internal/core"
)

// ErrArticleNotFound is returned when a source has no article with the requested id.
var ErrArticleNotFound = errors.New("article not found")

// ArticleSource loads articles by id.
type ArticleSource interface {
	GetArticle(ctx context.Context, id string) (core.ArticleContent, error)
}

// MemorySource is an in-memory ArticleSource.
type MemorySource struct {
	mu       sync.RWMutex
	articles map[string]core.ArticleContent
}

// NewMemorySource creates a source holding articles. Later duplicates win.
func NewMemorySource(articles ...core.ArticleContent) *MemorySource {
	s := &MemorySource{articles: make(map[string]core.ArticleContent, len(articles))}
	for _, article := range articles {
		s.articles[article.ID] = article
	}
	return s
}

// GetArticle implements ArticleSource.
func (s *MemorySource) GetArticle(ctx context.Context, id string) (core.ArticleContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[id]
	if !ok {
		return core.ArticleContent{}, ErrArticleNotFound
	}
	return article, nil
}

// Put adds or replaces an article.
func (s *MemorySource) Put(article core.ArticleContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.ID] = article
}

// Articles returns every article sorted by id.
func (s *MemorySource) Articles() []core.ArticleContent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]core.ArticleContent, 0, len(s.articles))
	for _, article := range s.articles {
		list = append(list, article)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
