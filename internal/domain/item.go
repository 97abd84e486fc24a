package domain

import "time"

// MediaKind classifies an item's media type.
type MediaKind string

// Media kinds mirrored from the external tagging store.
const (
	MediaImage     MediaKind = "image"
	MediaAnimation MediaKind = "animation"
	MediaVideo     MediaKind = "video"
)

// Item is a single media entry mirrored from the external store.
// Items are immutable once imported except for the Hidden moderation flag.
type Item struct {
	ID         int64     `json:"id"`
	Hash       string    `json:"hash"` // stable content hash from the external store
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Blurhash   string    `json:"blurhash,omitempty"` // low-resolution placeholder descriptor
	Kind       MediaKind `json:"kind"`
	ImportedAt time.Time `json:"imported_at"`
	Hidden     bool      `json:"hidden"`
}

// HasDimensions reports whether pixel dimensions are known for this item.
func (i *Item) HasDimensions() bool {
	return i.Width > 0 && i.Height > 0
}

// Group is a cluster of items considered the same work (e.g. a multi-page
// upload). Used to exclude sibling items from recommendations.
type Group struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	TranslatedTitle string `json:"translated_title,omitempty"`
}
