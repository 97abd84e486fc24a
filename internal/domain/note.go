package domain

// Note is a free-text annotation attached to an item.
// The translated counterpart, when present, is the same logical note in
// another language; search must report the pair once.
type Note struct {
	ID          int64  `json:"id"`
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"` // note label from the external store, e.g. "translation"
	Content     string `json:"content"`
	Translation string `json:"translation,omitempty"`
}

// HasTranslation reports whether a translated variant exists.
func (n *Note) HasTranslation() bool {
	return n.Translation != ""
}
