package domain

// TagCategory is one of the five fixed tag namespaces.
type TagCategory string

// The five fixed tag categories. New categories are never created at runtime.
const (
	CategoryCreator TagCategory = "creator"
	CategorySource  TagCategory = "source"
	CategorySubject TagCategory = "subject"
	CategoryGeneral TagCategory = "general"
	CategoryMeta    TagCategory = "meta-admin"
)

// AllCategories lists every tag category in display order.
var AllCategories = []TagCategory{
	CategoryCreator,
	CategorySource,
	CategorySubject,
	CategoryGeneral,
	CategoryMeta,
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c TagCategory) bool {
	switch c {
	case CategoryCreator, CategorySource, CategorySubject, CategoryGeneral, CategoryMeta:
		return true
	}
	return false
}

// Tag is a normalized label. Multiple rows may share the same name across
// categories ("ambiguous name"); bare-name resolution must consider all of them.
type Tag struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"` // lowercase, ':'-namespaced names allowed
	Category  TagCategory `json:"category"`
	ItemCount int         `json:"item_count"` // denormalized, maintained by the sync subsystem
}
