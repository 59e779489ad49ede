// Package pipeline drives one document through the extract → detect →
// reconcile → annotate sequence: strictly forward, page by page, with a
// single save at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/piimark/piimark/internal/detect"
	"github.com/piimark/piimark/internal/extract"
	"github.com/piimark/piimark/internal/reconcile"
)

// Extractor produces per-page text blocks for a document.
type Extractor interface {
	ExtractFile(path string) ([]extract.Page, error)
}

// Document is an open output document receiving highlight annotations.
type Document interface {
	PageCount() int
	AddHighlights(pageNum int, annotations []reconcile.Annotation) error
	SaveAs(path string) error
}

// OpenDocument opens the document that will be annotated and saved.
type OpenDocument func(path string) (Document, error)

// ProcessError locates a failure within the document so the user can find
// the offending page and block.
type ProcessError struct {
	Page  int
	Block int
	Err   error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("page %d, block %d: %v", e.Page, e.Block, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Summary reports what one run did.
type Summary struct {
	Pages       int
	Blocks      int
	Detections  int
	Annotations int
	Skipped     int // detections dropped because their span covered no glyphs
}

// Runner holds the collaborators for one run. Construct it once per
// document; it owns nothing beyond the run.
type Runner struct {
	extractor Extractor
	detector  detect.Detector
	open      OpenDocument
	language  string
	logger    *log.Logger
}

// NewRunner wires the pipeline collaborators together.
func NewRunner(extractor Extractor, detector detect.Detector, open OpenDocument, language string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		extractor: extractor,
		detector:  detector,
		open:      open,
		language:  language,
		logger:    logger,
	}
}

// Run processes inPath and writes the annotated copy to outPath. Any
// fatal error aborts the run before the save, so no partial output file
// is produced.
func (r *Runner) Run(ctx context.Context, inPath, outPath string) (*Summary, error) {
	pages, err := r.extractor.ExtractFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	doc, err := r.open(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	// The extractor and the writer parse the file independently; if they
	// disagree on the page count, page numbers cannot be trusted.
	if doc.PageCount() != len(pages) {
		return nil, fmt.Errorf("page count mismatch: extracted %d pages, document reports %d",
			len(pages), doc.PageCount())
	}

	summary := &Summary{Pages: len(pages)}

	for _, page := range pages {
		var pageAnnotations []reconcile.Annotation

		for blockIdx, block := range page.Blocks {
			summary.Blocks++

			annotations, err := r.processBlock(ctx, block, summary)
			if err != nil {
				return nil, &ProcessError{Page: page.Number, Block: blockIdx, Err: err}
			}
			pageAnnotations = append(pageAnnotations, annotations...)
		}

		if err := doc.AddHighlights(page.Number, pageAnnotations); err != nil {
			return nil, &ProcessError{Page: page.Number, Err: err}
		}
		summary.Annotations += len(pageAnnotations)
	}

	if err := doc.SaveAs(outPath); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	return summary, nil
}

// processBlock runs recognition over one block and reconciles each
// detection. A span that covers no glyphs is dropped and logged; a span
// reaching outside the glyph sequence aborts, because it means the glyph
// alignment contract between extractor and recognizer was broken and any
// annotation would mark the wrong characters.
func (r *Runner) processBlock(ctx context.Context, block extract.Block, summary *Summary) ([]reconcile.Annotation, error) {
	if block.IsWhitespace() {
		return nil, nil
	}
	if !block.Aligned() {
		return nil, fmt.Errorf("glyph sequence does not match block text (%d glyphs, %d runes)",
			len(block.Glyphs), len([]rune(block.Text)))
	}

	detections, err := r.detector.Detect(ctx, block.Text, r.language)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	summary.Detections += len(detections)

	annotations := make([]reconcile.Annotation, 0, len(detections))
	for _, det := range detections {
		ann, err := reconcile.Reconcile(block.Glyphs, det)
		if errors.Is(err, reconcile.ErrEmptySpan) {
			r.logger.Printf("dropping %s detection [%d, %d): %v", det.EntityType, det.Start, det.End, err)
			summary.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, ann)
	}

	return annotations, nil
}
