// Package detect finds PII entities in text. Detections carry half-open
// rune-offset spans into exactly the string that was analyzed.
package detect

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Detection is one PII finding: a half-open [Start, End) rune span into the
// analyzed text, the entity-type label, and the recognizer's confidence.
type Detection struct {
	Start      int
	End        int
	EntityType string
	Score      float64
}

// Detector is the entity-recognition collaborator. Implementations must
// report offsets into exactly the string passed in.
type Detector interface {
	Detect(ctx context.Context, text, lang string) ([]Detection, error)
}

// Recognizer is a single compiled pattern rule. An empty Languages list
// means the rule applies to every language.
type Recognizer struct {
	Entity    string
	Pattern   *regexp.Regexp
	Score     float64
	Languages []string
}

// matchesLanguage reports whether the recognizer applies to lang.
func (r Recognizer) matchesLanguage(lang string) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// PatternDetector runs a fixed set of regex recognizers over text. It is
// constructed once and safe to call many times; all state is immutable
// after construction.
type PatternDetector struct {
	recognizers []Recognizer
	minScore    float64
}

// NewPatternDetector creates a detector with the built-in recognizer set.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{
		recognizers: builtinRecognizers(),
	}
}

// NewPatternDetectorWithRules creates a detector with the built-in set
// extended by custom recognizers, typically loaded from a rules file.
func NewPatternDetectorWithRules(custom []Recognizer) *PatternDetector {
	return &PatternDetector{
		recognizers: append(builtinRecognizers(), custom...),
	}
}

// SetMinScore drops detections scoring below threshold. Zero keeps everything.
func (d *PatternDetector) SetMinScore(threshold float64) {
	d.minScore = threshold
}

// Detect runs every applicable recognizer over text and returns the
// accumulated detections. Offsets are rune offsets; byte positions from
// the regex engine are translated before they leave this package.
func (d *PatternDetector) Detect(ctx context.Context, text, lang string) ([]Detection, error) {
	if text == "" {
		return nil, nil
	}

	runeAt := runeOffsets(text)

	var detections []Detection
	for _, rec := range d.recognizers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("detection canceled: %w", err)
		}
		if !rec.matchesLanguage(lang) {
			continue
		}
		if d.minScore > 0 && rec.Score < d.minScore {
			continue
		}

		for _, loc := range rec.Pattern.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				Start:      runeAt[loc[0]],
				End:        runeAt[loc[1]],
				EntityType: rec.Entity,
				Score:      rec.Score,
			})
		}
	}

	return detections, nil
}

// runeOffsets maps every byte position in text (inclusive of len(text))
// to its rune index.
func runeOffsets(text string) []int {
	offsets := make([]int, len(text)+1)
	runeIdx := 0
	byteIdx := 0
	for byteIdx < len(text) {
		_, size := utf8.DecodeRuneInString(text[byteIdx:])
		for j := 0; j < size; j++ {
			offsets[byteIdx+j] = runeIdx
		}
		byteIdx += size
		runeIdx++
	}
	offsets[len(text)] = runeIdx
	return offsets
}
