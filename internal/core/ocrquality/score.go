// Package ocrquality estimates how trustworthy OCR output is, per page,
// from the token stream and per-token confidences the OCR engine emits.
package ocrquality

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// Thresholds controls when a document is flagged as low confidence.
// Zero values fall back to the defaults below.
type Thresholds struct {
	MinPageConfidence float64
	MinValidWords     int
}

const (
	defaultMinPageConfidence = 0.6
	defaultMinValidWords     = 5
)

func (t Thresholds) normalize() Thresholds {
	if t.MinPageConfidence <= 0 {
		t.MinPageConfidence = defaultMinPageConfidence
	}
	if t.MinValidWords <= 0 {
		t.MinValidWords = defaultMinValidWords
	}
	return t
}

// validToken accepts words an OCR engine plausibly read correctly: they
// start with a letter or digit, are at least two runes long, and contain
// only letters, digits, and light punctuation.
var validToken = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9\-./]+$`)

// ScorePage reduces one OCR page to its quality metric. Tokens and
// Confidences are parallel arrays as the engine emits them, confidences
// as decimal strings on a 0..100 scale. Only confidences attached to
// valid tokens join the mean; unparsable and negative entries are
// excluded, never treated as zero. A page with no valid tokens scores 0.
func ScorePage(page domain.OCRPage) domain.OCRPageMetric {
	valid := 0
	sum, n := 0.0, 0
	for i, token := range page.Tokens {
		if !validToken.MatchString(strings.TrimSpace(token)) {
			continue
		}
		valid++
		if i >= len(page.Confidences) {
			continue
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(page.Confidences[i]), 64)
		if err != nil || c < 0 {
			continue
		}
		sum += c / 100
		n++
	}
	confidence := 0.0
	if n > 0 {
		confidence = round4(sum / float64(n))
	}

	return domain.OCRPageMetric{
		PageNumber:          page.Number,
		CharacterCount:      utf8.RuneCountInString(page.Text),
		ValidWordCount:      valid,
		EstimatedConfidence: confidence,
		RotationApplied:     page.Rotation,
	}
}

// ScorePages scores every page of an OCR extraction in order.
func ScorePages(pages []domain.OCRPage) []domain.OCRPageMetric {
	metrics := make([]domain.OCRPageMetric, 0, len(pages))
	for _, page := range pages {
		metrics = append(metrics, ScorePage(page))
	}
	return metrics
}

// IsLowConfidence reports whether any page falls below the confidence or
// valid-word floor. One bad page taints the whole document because field
// values may live on that page.
func IsLowConfidence(metrics []domain.OCRPageMetric, t Thresholds) bool {
	t = t.normalize()
	for _, m := range metrics {
		if m.EstimatedConfidence < t.MinPageConfidence || m.ValidWordCount < t.MinValidWords {
			return true
		}
	}
	return false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
