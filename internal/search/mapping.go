package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// textField describes one string field of MovieDocument.
type textField struct {
	name     string
	analyzer string
	store    bool
	vectors  bool
}

// movieTextFields lists the string fields in ToMap order. Titles get English
// stemming, director names only lowercasing, and the rest stay verbatim so
// genre filters and facets match labels exactly.
var movieTextFields = []textField{
	{name: "id", analyzer: keyword.Name},
	{name: "name", analyzer: en.AnalyzerName, store: true, vectors: true},
	{name: "director", analyzer: simple.Name, store: true, vectors: true},
	{name: "genre", analyzer: keyword.Name, store: true},
	{name: "genre_slug", analyzer: keyword.Name},
}

// movieNumericFields are range-queryable and sortable.
var movieNumericFields = []string{"year", "score", "gross", "votes"}

func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	for _, f := range movieTextFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = f.analyzer
		fm.Store = f.store
		fm.IncludeTermVectors = f.vectors
		doc.AddFieldMappingsAt(f.name, fm)
	}
	for _, name := range movieNumericFields {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		doc.AddFieldMappingsAt(name, fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName
	im.DefaultMapping = doc
	return im
}
