// Package search provides full-text note and title search using Bleve.
// Notes, their translations, and group titles are indexed as separate
// documents sharing a content identity, so a translated variant and its
// original deduplicate to one logical result at query time.
package search

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/domain"
)

// Source says which text surface a document was indexed from.
type Source string

// Document sources in the index.
const (
	SourceNote        Source = "note"
	SourceTranslation Source = "translation"
	SourceTitle       Source = "title"
)

// Document is one indexed text variant. A logical note yields up to two
// documents (original and translation) carrying the same Identity; a group
// title likewise. The highest-ranked variant per identity wins at query time.
type Document struct {
	ID       string  `json:"id"`
	Identity string  `json:"identity"`
	Source   Source  `json:"source"`
	Text     string  `json:"text"`
	Label    string  `json:"label"`    // note name or group title, for display
	ItemIDs  []int64 `json:"item_ids"` // items this text attaches to
}

// ToMap converts the document to a map with lowercase field names matching
// the index mapping; Bleve would otherwise index Go's capitalized names.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":       d.ID,
		"identity": d.Identity,
		"source":   string(d.Source),
		"text":     d.Text,
	}
	if d.Label != "" {
		m["label"] = d.Label
	}
	if len(d.ItemIDs) > 0 {
		ids := make([]interface{}, len(d.ItemIDs))
		for i, id := range d.ItemIDs {
			ids[i] = float64(id)
		}
		m["item_ids"] = ids
	}
	return m
}

// noteIdentity is the content identity shared by a note's language variants.
func noteIdentity(n *domain.Note) string {
	h := xxhash.New()
	fmt.Fprintf(h, "note:%d:%d:%s", n.ItemID, n.ID, n.Name)
	return fmt.Sprintf("%016x", h.Sum64())
}

// titleIdentity is the content identity shared by a group title's variants.
func titleIdentity(g *domain.Group) string {
	h := xxhash.New()
	fmt.Fprintf(h, "title:%d", g.ID)
	return fmt.Sprintf("%016x", h.Sum64())
}

// NoteDocuments builds the index documents for a note: one for the original
// content and, when present, one for the translation.
func NoteDocuments(n *domain.Note) []*Document {
	identity := noteIdentity(n)
	docs := []*Document{{
		ID:       fmt.Sprintf("note-%d-orig", n.ID),
		Identity: identity,
		Source:   SourceNote,
		Text:     n.Content,
		Label:    n.Name,
		ItemIDs:  []int64{n.ItemID},
	}}
	if n.HasTranslation() {
		docs = append(docs, &Document{
			ID:       fmt.Sprintf("note-%d-trans", n.ID),
			Identity: identity,
			Source:   SourceTranslation,
			Text:     n.Translation,
			Label:    n.Name,
			ItemIDs:  []int64{n.ItemID},
		})
	}
	return docs
}

// GroupTitleDocuments builds the index documents for a group's title and
// translated title. Member item ids are denormalized in so a title match
// can participate in item-set filtering without a store round-trip.
func GroupTitleDocuments(g *domain.Group, memberItemIDs []int64) []*Document {
	identity := titleIdentity(g)
	var docs []*Document
	if g.Title != "" {
		docs = append(docs, &Document{
			ID:       fmt.Sprintf("group-%d-title", g.ID),
			Identity: identity,
			Source:   SourceTitle,
			Text:     g.Title,
			Label:    g.Title,
			ItemIDs:  memberItemIDs,
		})
	}
	if g.TranslatedTitle != "" {
		docs = append(docs, &Document{
			ID:       fmt.Sprintf("group-%d-title-trans", g.ID),
			Identity: identity,
			Source:   SourceTranslation,
			Text:     g.TranslatedTitle,
			Label:    g.Title,
			ItemIDs:  memberItemIDs,
		})
	}
	return docs
}
