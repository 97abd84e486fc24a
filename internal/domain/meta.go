package domain

// MetaName identifies a computed ("meta") predicate: a filter evaluated from
// item attributes rather than a stored tag row. The set is fixed in code;
// meta names are matched before any vocabulary lookup during compilation.
type MetaName string

// The built-in meta predicates.
const (
	MetaVideo     MetaName = "meta:video"     // item is a video
	MetaAnimation MetaName = "meta:animation" // item is an animation (gif/apng)
	MetaImage     MetaName = "meta:image"     // item is a still image
	MetaHighRes   MetaName = "meta:highres"   // >= 1600x1200 pixels
	MetaLowRes    MetaName = "meta:lowres"    // < 640x480 pixels
	MetaPortrait  MetaName = "meta:portrait"  // height > width
	MetaLandscape MetaName = "meta:landscape" // width > height
	MetaSquare    MetaName = "meta:square"    // width == height
)

// metaNames indexes every built-in predicate by its token form.
var metaNames = map[MetaName]struct{}{
	MetaVideo:     {},
	MetaAnimation: {},
	MetaImage:     {},
	MetaHighRes:   {},
	MetaLowRes:    {},
	MetaPortrait:  {},
	MetaLandscape: {},
	MetaSquare:    {},
}

// LookupMeta reports whether a normalized token names a built-in meta predicate.
func LookupMeta(token string) (MetaName, bool) {
	m := MetaName(token)
	_, ok := metaNames[m]
	return m, ok
}
