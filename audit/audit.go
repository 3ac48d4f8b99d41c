// Package audit keeps a searchable in-memory record of the header comments
// removed from files during a sweep.
package audit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Entry is one replaced header.
type Entry struct {
	Path     string // Path of the rewritten file, relative to the sweep root
	Language string
	Header   string // The header block as it was before the rewrite
}

// Index provides full-text search over replaced headers using a Bleve in-memory index.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	// entries stores raw entries; Bleve only keeps the inverted index
	entries map[string]Entry
}

// NewIndex creates a new in-memory audit index.
func NewIndex() (*Index, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &Index{
		index:   bleveIndex,
		entries: make(map[string]Entry),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Header   string `json:"header"`
	Language string `json:"language"`
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	headerFieldMapping := bleve.NewTextFieldMapping()
	headerFieldMapping.Store = false
	headerFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("header", headerFieldMapping)

	langFieldMapping := bleve.NewKeywordFieldMapping()
	langFieldMapping.Store = false
	langFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Record adds or replaces the entry for e.Path.
func (ix *Index) Record(e Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := bleveDocument{Header: e.Header, Language: e.Language}
	if err := ix.index.Index(e.Path, doc); err != nil {
		return fmt.Errorf("indexing header of %s: %w", e.Path, err)
	}
	ix.entries[e.Path] = e
	return nil
}

// Remove drops the entry for path.
func (ix *Index) Remove(path string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.entries, path)
	if err := ix.index.Delete(path); err != nil {
		return fmt.Errorf("removing %s from audit index: %w", path, err)
	}
	return nil
}

// Get returns the entry recorded for path.
func (ix *Index) Get(path string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[path]
	return e, ok
}

// SearchOptions configures a search over replaced headers.
type SearchOptions struct {
	Query      string
	Language   string // Restrict to one language when non-empty
	MaxResults int
}

// Search finds replaced headers matching the query.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query against single terms
//
// An empty query matches every entry. Results are ordered by score, then path.
func (ix *Index) Search(options SearchOptions) ([]Entry, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}

	queries := []query.Query{buildQuery(options.Query)}
	if options.Language != "" {
		langQuery := bleve.NewTermQuery(strings.ToLower(options.Language))
		langQuery.SetField("language")
		queries = append(queries, langQuery)
	}

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(queries...))
	searchRequest.Size = options.MaxResults
	searchRequest.SortBy([]string{"-_score", "_id"})

	searchResults, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching audit index: %w", err)
	}

	results := make([]Entry, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		if e, ok := ix.entries[hit.ID]; ok {
			results = append(results, e)
		}
	}
	return results, nil
}

// buildQuery parses the query string into a Bleve query on the header field.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	// Regex query: /pattern/
	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		q := bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
		q.SetField("header")
		return q
	}

	// Phrase query: "exact phrase"
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		q := bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
		q.SetField("header")
		return q
	}

	q := bleve.NewMatchQuery(queryString)
	q.SetField("header")
	return q
}

// Count returns the number of documents in the Bleve index.
func (ix *Index) Count() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	count, _ := ix.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}
