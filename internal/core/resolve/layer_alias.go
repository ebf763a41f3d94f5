package resolve

import (
	"context"
	"regexp"
	"sync"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// aliasLayer is Layer A: alias-anchored pattern matching. An alias phrase
// immediately followed by an optional qualifier word, an optional
// separator, and a value matching the field's shape pattern resolves the
// field on the spot.
type aliasLayer struct {
	confidence float64
}

func (l *aliasLayer) Layer() domain.SourceLayer { return domain.LayerAlias }

func (l *aliasLayer) Resolve(_ context.Context, req *request, pending []domain.Field) map[domain.Field]domain.Candidate {
	out := make(map[domain.Field]domain.Candidate, len(pending))
	for _, field := range pending {
		aliases := req.Profile.AliasesFor(field)
		if len(aliases) == 0 {
			continue
		}
	scan:
		for _, line := range req.Lines {
			for _, alias := range aliases {
				value, ok := matchAfterAlias(line, alias, field)
				if ok && plausible(field, value) {
					out[field] = domain.Candidate{Value: value, Confidence: l.confidence}
					break scan
				}
			}
		}
	}
	return out
}

func matchAfterAlias(line, alias string, field domain.Field) (string, bool) {
	m := aliasPattern(alias, field).FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	value := NormalizeSpaces(m[1])
	return value, value != ""
}

var (
	aliasPatternMu    sync.RWMutex
	aliasPatternCache = make(map[string]*regexp.Regexp)
)

func aliasPattern(alias string, field domain.Field) *regexp.Regexp {
	key := string(field) + "\x00" + alias

	aliasPatternMu.RLock()
	re, ok := aliasPatternCache[key]
	aliasPatternMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(
		`(?i)` + regexp.QuoteMeta(alias) + `\s*(?:no|number|#)?\s*[:\-]?\s*` + domain.ValuePatterns[field],
	)
	aliasPatternMu.Lock()
	aliasPatternCache[key] = re
	aliasPatternMu.Unlock()
	return re
}
