package persistence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pressroom/internal/core"
)

// FileSource serves articles from a YAML or JSON file loaded once at startup.
// The file holds either a list of articles or a mapping with an "articles" list.
type FileSource struct {
	path string
	*MemorySource
}

// NewFileSource reads and parses path.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles file %s: %w", path, err)
	}

	articles, err := ParseArticles(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse articles file %s: %w", path, err)
	}

	return &FileSource{path: path, MemorySource: NewMemorySource(articles...)}, nil
}

// ParseArticles decodes a YAML or JSON article list. Articles without an id are rejected.
func ParseArticles(data []byte) ([]core.ArticleContent, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var articles []core.ArticleContent
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&articles); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var doc struct {
			Articles []core.ArticleContent `yaml:"articles"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		articles = doc.Articles
	default:
		return nil, fmt.Errorf("expected a list of articles or an articles mapping")
	}

	for i, article := range articles {
		if article.ID == "" {
			return nil, fmt.Errorf("article %d has no id", i)
		}
	}
	return articles, nil
}

// Path returns the file the articles were loaded from.
func (f *FileSource) Path() string {
	return f.path
}
