// Package annotate writes highlight markup annotations into a PDF using
// pdfcpu. The document is opened once, mutated in memory, and persisted
// with a single save; a failed save leaves no output file behind.
package annotate

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/piimark/piimark/internal/reconcile"
)

// Fixed presentation of every highlight. These are rendering constants of
// the output format, not configuration.
const (
	highlightRed   = 1.0
	highlightGreen = 0.0
	highlightBlue  = 0.0
	highlightAlpha = 0.5

	// annotFlagPrint makes the highlight visible when the page is printed.
	annotFlagPrint = 4
)

// Document is an open PDF being annotated. It owns the underlying pdfcpu
// context exclusively for the open → mutate → save lifecycle.
type Document struct {
	ctx      *model.Context
	filePath string
}

// Open reads and validates the PDF at path.
func Open(path string) (*Document, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &Document{
		ctx:      ctx,
		filePath: path,
	}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// AddHighlights appends one highlight annotation per entry to the page's
// annotation list. pageNum is 1-based. A page receiving no annotations is
// left untouched.
func (d *Document) AddHighlights(pageNum int, annotations []reconcile.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	if pageNum < 1 || pageNum > d.ctx.PageCount {
		return fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, d.ctx.PageCount)
	}

	pageDict, pageIndRef, _, err := d.ctx.PageDict(pageNum, false)
	if err != nil {
		return fmt.Errorf("failed to resolve page %d: %w", pageNum, err)
	}

	annots := types.Array{}
	if obj, found := pageDict.Find("Annots"); found {
		annots, err = d.ctx.DereferenceArray(obj)
		if err != nil {
			return fmt.Errorf("failed to dereference annotations of page %d: %w", pageNum, err)
		}
	}

	for _, ann := range annotations {
		dict := newHighlightDict(ann)
		if pageIndRef != nil {
			dict["P"] = *pageIndRef
		}

		indRef, err := d.ctx.IndRefForNewObject(dict)
		if err != nil {
			return fmt.Errorf("failed to register annotation on page %d: %w", pageNum, err)
		}
		annots = append(annots, *indRef)
	}

	pageDict.Update("Annots", annots)
	return nil
}

// SaveAs serializes the annotated document to path in one write.
func (d *Document) SaveAs(path string) error {
	if err := api.WriteContextFile(d.ctx, path); err != nil {
		return fmt.Errorf("failed to write PDF to %s: %w", path, err)
	}
	return nil
}

// newHighlightDict builds the highlight annotation dictionary for one
// reconciled detection. The label doubles as the annotation title and its
// popup content.
func newHighlightDict(ann reconcile.Annotation) types.Dict {
	r := ann.Rect
	return types.Dict{
		"Type":       types.Name("Annot"),
		"Subtype":    types.Name("Highlight"),
		"Rect":       types.NewNumberArray(r.X0, r.Y0, r.X1, r.Y1),
		"QuadPoints": types.NewNumberArray(quadPoints(ann)...),
		"C":          types.NewNumberArray(highlightRed, highlightGreen, highlightBlue),
		"CA":         types.Float(highlightAlpha),
		"T":          types.StringLiteral(ann.Label),
		"Contents":   types.StringLiteral(ann.Label),
		"F":          types.Integer(annotFlagPrint),
	}
}

// quadPoints returns the highlight quadrilateral corners in the order the
// format requires: top-left, top-right, bottom-left, bottom-right, with
// the higher-Y corners first. Any other ordering renders as a flipped or
// degenerate quad in common viewers.
func quadPoints(ann reconcile.Annotation) []float64 {
	r := ann.Rect
	return []float64{
		r.X0, r.Y1,
		r.X1, r.Y1,
		r.X0, r.Y0,
		r.X1, r.Y0,
	}
}
