package resolve

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// contextLayer is Layer B: contextual window search. It anchors on any
// line containing a field alias and then scans a small window around it
// for a value-shaped line, which recovers "label above, value below"
// layouts typical of scanned tables.
type contextLayer struct {
	confidence float64
}

func (l *contextLayer) Layer() domain.SourceLayer { return domain.LayerContext }

func (l *contextLayer) Resolve(_ context.Context, req *request, pending []domain.Field) map[domain.Field]domain.Candidate {
	out := make(map[domain.Field]domain.Candidate, len(pending))
	for _, field := range pending {
		aliases := req.Profile.AliasesFor(field)
		if len(aliases) == 0 {
			continue
		}
		for idx, line := range req.Lines {
			if !containsAnyFold(line, aliases) {
				continue
			}
			if value, ok := l.searchWindow(req.Lines, idx, field, aliases); ok {
				out[field] = domain.Candidate{Value: value, Confidence: l.confidence}
				break
			}
		}
	}
	return out
}

// searchWindow inspects the anchor line itself (with the alias stripped)
// first, then the two lines after it, then the one before. The anchor
// pass handles "LABEL VALUE" without a separator; the after/before passes
// handle vertical key/value pairs.
func (l *contextLayer) searchWindow(lines []string, anchor int, field domain.Field, aliases []string) (string, bool) {
	pattern := valuePattern(field)

	if value, ok := captureValue(pattern, stripAlias(lines[anchor], aliases), field); ok {
		return value, true
	}
	for _, idx := range []int{anchor + 1, anchor + 2, anchor - 1} {
		if idx < 0 || idx >= len(lines) {
			continue
		}
		if value, ok := captureValue(pattern, lines[idx], field); ok {
			return value, true
		}
	}
	return "", false
}

func captureValue(pattern *regexp.Regexp, line string, field domain.Field) (string, bool) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	value := NormalizeSpaces(m[1])
	if value == "" || !plausible(field, value) {
		return "", false
	}
	return value, true
}

func containsAnyFold(line string, aliases []string) bool {
	lower := strings.ToLower(line)
	for _, alias := range aliases {
		if strings.Contains(lower, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

// stripAlias removes the longest matching alias occurrence from a line so
// the remainder can be matched as a pure value.
func stripAlias(line string, aliases []string) string {
	lower := strings.ToLower(line)
	start, length := -1, 0
	for _, alias := range aliases {
		a := strings.ToLower(alias)
		if i := strings.Index(lower, a); i >= 0 && len(a) > length {
			start, length = i, len(a)
		}
	}
	if start < 0 {
		return line
	}
	return NormalizeSpaces(line[:start] + " " + line[start+length:])
}

var (
	valuePatternMu    sync.RWMutex
	valuePatternCache = make(map[domain.Field]*regexp.Regexp)
)

func valuePattern(field domain.Field) *regexp.Regexp {
	valuePatternMu.RLock()
	re, ok := valuePatternCache[field]
	valuePatternMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`(?i)` + domain.ValuePatterns[field])
	valuePatternMu.Lock()
	valuePatternCache[field] = re
	valuePatternMu.Unlock()
	return re
}
