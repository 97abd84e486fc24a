package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for text documents.
//
// The mapping is small on purpose: one analyzed text field carries all the
// ranking weight, everything else is exact-match plumbing for dedup and
// item-set extraction.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Text - the only full-text searchable field. Stored so snippets can be
	// built from the original, with term vectors for match positions.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = true
	textFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	// Label - display name, stored but not analyzed.
	labelFieldMapping := bleve.NewTextFieldMapping()
	labelFieldMapping.Analyzer = keyword.Name
	labelFieldMapping.Store = true
	labelFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("label", labelFieldMapping)

	// Identity - dedup key across language variants.
	identityFieldMapping := bleve.NewTextFieldMapping()
	identityFieldMapping.Analyzer = keyword.Name
	identityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("identity", identityFieldMapping)

	// Source - note / translation / title.
	sourceFieldMapping := bleve.NewTextFieldMapping()
	sourceFieldMapping.Analyzer = keyword.Name
	sourceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("source", sourceFieldMapping)

	// ID - stored but not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Item ids - stored for extraction, never queried as text.
	itemIDsFieldMapping := bleve.NewNumericFieldMapping()
	itemIDsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("item_ids", itemIDsFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
