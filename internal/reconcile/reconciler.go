// Package reconcile maps a detection's character span back onto the page:
// it slices the block's glyph sequence by the span's rune offsets and
// reduces the selected glyph rectangles to one enclosing rectangle.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/piimark/piimark/internal/detect"
	"github.com/piimark/piimark/internal/extract"
	"github.com/piimark/piimark/internal/geom"
)

// ErrEmptySpan signals a span that selects no glyphs. Callers should drop
// the detection and continue; it carries no usable geometry.
var ErrEmptySpan = errors.New("span selects no glyphs")

// SpanRangeError signals a span reaching outside the glyph sequence. It
// means the text the recognizer analyzed and the glyph sequence no longer
// agree, so annotating anything would mark the wrong characters. It must
// be surfaced, never clamped away.
type SpanRangeError struct {
	Start, End int
	GlyphCount int
}

func (e *SpanRangeError) Error() string {
	return fmt.Sprintf("span [%d, %d) out of range for %d glyphs", e.Start, e.End, e.GlyphCount)
}

// Annotation is a reconciled detection: one enclosing rectangle plus the
// entity-type label it will be rendered with.
type Annotation struct {
	Rect  geom.Rect
	Label string
}

// Reconcile converts a detection span into a single bounding rectangle by
// unioning the rectangles of every selected glyph. Spans frequently cover
// glyphs that do not advance monotonically on the page (line wraps,
// right-to-left runs, superscripts), so the reduction visits every glyph;
// taking just the first and last corners would be wrong for those cases.
// The union operator is commutative and associative, making the result
// independent of reduction order.
func Reconcile(glyphs []extract.Glyph, det detect.Detection) (Annotation, error) {
	if det.Start < 0 || det.End > len(glyphs) {
		return Annotation{}, &SpanRangeError{
			Start:      det.Start,
			End:        det.End,
			GlyphCount: len(glyphs),
		}
	}
	if det.Start >= det.End {
		return Annotation{}, ErrEmptySpan
	}

	selected := glyphs[det.Start:det.End]
	rect := selected[0].Rect
	for _, g := range selected[1:] {
		rect = rect.Union(g.Rect)
	}

	return Annotation{Rect: rect, Label: det.EntityType}, nil
}
