// Package extract reads a PDF and reconstructs, per page, an ordered
// sequence of text blocks whose glyph rectangles stay aligned with the
// block text rune-for-rune.
package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/piimark/piimark/internal/geom"
)

const (
	// defaultGlyphHeight approximates text height when the extraction
	// library reports no font size.
	defaultGlyphHeight = 12.0

	// lineTolFactor bounds how far a glyph's baseline may drift from the
	// line baseline and still join the line. Superscripts and subscripts
	// sit within this band.
	lineTolFactor = 0.5

	// spaceGapFactor is the horizontal gap, as a fraction of glyph height,
	// beyond which a space is synthesized between neighboring glyphs.
	spaceGapFactor = 0.25

	// blockGapFactor is the baseline distance, as a multiple of line
	// height, beyond which consecutive lines start a new block.
	blockGapFactor = 1.8
)

// Extractor turns PDF files into per-page block sequences.
type Extractor struct {
	maxFileSize int64
}

// NewExtractor creates an extractor that rejects files larger than maxFileSize bytes.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
	}
}

// ExtractFile opens the PDF at path and returns its pages in order.
// Pages that yield no text come back with an empty block list rather
// than being dropped, so page numbering stays stable for the caller.
func (e *Extractor) ExtractFile(path string) ([]Page, error) {
	if err := e.validatePDFFile(path); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pages := make([]Page, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: pageNum})
			continue
		}

		glyphs := glyphsFromTexts(contentTexts(page))
		pages = append(pages, Page{
			Number: pageNum,
			Blocks: assembleBlocks(groupLines(glyphs)),
		})
	}

	return pages, nil
}

// validatePDFFile performs basic validation on a PDF file
func (e *Extractor) validatePDFFile(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}

	if fileInfo.Size() > e.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), e.maxFileSize)
	}

	return nil
}

// contentTexts pulls the raw positioned text runs off a page. Content
// parsing panics on some malformed pages; those pages degrade to empty
// rather than aborting the document.
func contentTexts(page pdf.Page) (texts []pdf.Text) {
	defer func() {
		if recover() != nil {
			texts = nil
		}
	}()
	return page.Content().Text
}

// glyphsFromTexts converts positioned text runs into per-rune glyphs.
// Runs carrying more than one rune get their width apportioned evenly,
// which keeps the downstream rune/rectangle alignment exact even when
// the library merges characters into a single run.
func glyphsFromTexts(texts []pdf.Text) []Glyph {
	var glyphs []Glyph

	for _, text := range texts {
		runes := []rune(text.S)
		if len(runes) == 0 {
			continue
		}

		height := text.FontSize
		if height == 0 {
			height = defaultGlyphHeight
		}
		runeWidth := text.W / float64(len(runes))

		for i, r := range runes {
			x0 := text.X + runeWidth*float64(i)
			glyphs = append(glyphs, Glyph{
				Rune: r,
				Rect: geom.Rect{
					X0: x0,
					Y0: text.Y,
					X1: x0 + runeWidth,
					Y1: text.Y + height,
				},
			})
		}
	}

	return glyphs
}

// groupLines clusters glyphs into baseline lines and orders each line
// left to right. Page coordinates are y-up, so reading order is
// descending Y.
func groupLines(glyphs []Glyph) []line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rect.Y0 > sorted[j].Rect.Y0
	})

	var lines []line
	current := line{
		glyphs:   []Glyph{sorted[0]},
		baseline: sorted[0].Rect.Y0,
		height:   sorted[0].Rect.Height(),
	}

	for _, g := range sorted[1:] {
		tol := lineTolFactor * maxFloat(current.height, g.Rect.Height())
		if current.baseline-g.Rect.Y0 > tol {
			lines = append(lines, current)
			current = line{
				glyphs:   []Glyph{g},
				baseline: g.Rect.Y0,
				height:   g.Rect.Height(),
			}
			continue
		}
		current.glyphs = append(current.glyphs, g)
		current.height = maxFloat(current.height, g.Rect.Height())
	}
	lines = append(lines, current)

	for i := range lines {
		ln := lines[i].glyphs
		sort.SliceStable(ln, func(a, b int) bool {
			return ln[a].Rect.X0 < ln[b].Rect.X0
		})
	}

	return lines
}

// assembleBlocks joins consecutive lines into blocks and materializes the
// block text. Every synthesized whitespace character gets a glyph so the
// alignment invariant holds by construction.
func assembleBlocks(lines []line) []Block {
	if len(lines) == 0 {
		return nil
	}

	var blocks []Block
	start := 0
	for i := 1; i <= len(lines); i++ {
		if i < len(lines) {
			gap := lines[i-1].baseline - lines[i].baseline
			if gap <= blockGapFactor*maxFloat(lines[i-1].height, lines[i].height) {
				continue
			}
		}
		blocks = append(blocks, buildBlock(lines[start:i]))
		start = i
	}

	return blocks
}

// buildBlock flattens lines into one block, inserting synthetic spaces
// across wide horizontal gaps and a synthetic newline between lines.
func buildBlock(lines []line) Block {
	var sb strings.Builder
	var glyphs []Glyph

	for li, ln := range lines {
		if li > 0 {
			// The newline has no ink; anchor it to the trailing edge of
			// the previous line so every rune keeps a rectangle.
			last := glyphs[len(glyphs)-1].Rect
			sb.WriteRune('\n')
			glyphs = append(glyphs, Glyph{
				Rune: '\n',
				Rect: geom.Rect{X0: last.X1, Y0: last.Y0, X1: last.X1, Y1: last.Y1},
			})
		}

		for gi, g := range ln.glyphs {
			if gi > 0 {
				prev := ln.glyphs[gi-1]
				gap := g.Rect.X0 - prev.Rect.X1
				if gap > spaceGapFactor*ln.height && prev.Rune != ' ' && g.Rune != ' ' {
					sb.WriteRune(' ')
					glyphs = append(glyphs, Glyph{
						Rune: ' ',
						Rect: geom.NewRect(prev.Rect.X1, minFloat(prev.Rect.Y0, g.Rect.Y0),
							g.Rect.X0, maxFloat(prev.Rect.Y1, g.Rect.Y1)),
					})
				}
			}
			sb.WriteRune(g.Rune)
			glyphs = append(glyphs, g)
		}
	}

	return Block{Text: sb.String(), Glyphs: glyphs}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
