package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/piimark/piimark/internal/geom"
)

// Glyph is one extracted character together with its bounding rectangle in
// page space. Synthetic whitespace glyphs (spaces and newlines inserted
// during block assembly) carry rectangles derived from their neighbors so
// that every character of a block's text has a box.
type Glyph struct {
	Rune rune
	Rect geom.Rect
}

// Block is a group of lines that belong together visually. Its glyph
// sequence matches its text rune-for-rune: the glyph at position i is the
// character at rune index i of Text. Downstream span mapping depends on
// this alignment.
type Block struct {
	Text   string
	Glyphs []Glyph
}

// Aligned reports whether the glyph/text alignment invariant holds.
func (b Block) Aligned() bool {
	return utf8.RuneCountInString(b.Text) == len(b.Glyphs)
}

// IsWhitespace reports whether the block contains no printable text.
func (b Block) IsWhitespace() bool {
	return strings.TrimSpace(b.Text) == ""
}

// Page holds the text blocks extracted from one document page, in reading
// order. Number is 1-based, matching PDF page numbering.
type Page struct {
	Number int
	Blocks []Block
}

// line is a horizontal run of glyphs sharing a baseline. Lines are an
// intermediate grouping between raw glyphs and blocks and never leave
// this package.
type line struct {
	glyphs   []Glyph
	baseline float64
	height   float64
}
