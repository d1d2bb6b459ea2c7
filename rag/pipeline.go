package rag

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const DefaultTopK = 2

var pricePattern = regexp.MustCompile(`\$(\d+)`)

// Pipeline serves one tenant's knowledge file.
type Pipeline struct {
	tenantID string
	path     string
	topK     int

	mu    sync.RWMutex
	index *Index
}

// NewPipeline loads and indexes the knowledge file at path.
func NewPipeline(tenantID, path string, topK int) (*Pipeline, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	p := &Pipeline{tenantID: tenantID, path: path, topK: topK}
	if err := p.Reindex(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reindex rereads the knowledge file. On failure the previous index stays.
func (p *Pipeline) Reindex() error {
	docs, err := LoadDocuments(p.path)
	if err != nil {
		return fmt.Errorf("tenant %s: %w", p.tenantID, err)
	}
	idx := NewIndex(docs)

	p.mu.Lock()
	p.index = idx
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) Documents() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.Len()
}

// GetContext returns the retrieved context for query, or "" when nothing
// matches. A price line among the hits yields a one-sentence answer instead
// of the raw documents.
func (p *Pipeline) GetContext(query string) string {
	p.mu.RLock()
	docs := p.index.Search(query, p.topK)
	p.mu.RUnlock()

	if len(docs) == 0 {
		return ""
	}
	if price, ok := ExtractPrice(docs); ok {
		return price
	}
	return strings.Join(docs, "\n\n")
}

// ExtractPrice finds the first document mentioning "$<digits>" and phrases
// it as "El precio de <product> es $<n> por unidad.", where product is the
// lowercased text before the first colon.
func ExtractPrice(docs []string) (string, bool) {
	for _, doc := range docs {
		price := pricePattern.FindString(doc)
		if price == "" {
			continue
		}
		product, _, _ := strings.Cut(doc, ":")
		return fmt.Sprintf("El precio de %s es %s por unidad.", strings.ToLower(product), price), true
	}
	return "", false
}
