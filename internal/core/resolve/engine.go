// Package resolve implements layered field resolution over normalized
// document text. Three layers run in fixed order: exact alias matching,
// contextual window search, and semantic inference with a local
// heuristic fallback. The first layer to produce a plausible value for
// a field wins; later layers never overwrite it.
package resolve

import (
	"context"
	"math"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
)

// Config carries the tunable confidence levels of the engine. Zero
// values fall back to the defaults below.
type Config struct {
	ConfidenceThreshold      float64
	AliasLayerConfidence     float64
	ContextLayerConfidence   float64
	InferenceLayerConfidence float64
	SampleLimit              int
}

const (
	defaultConfidenceThreshold      = 0.75
	defaultAliasLayerConfidence     = 0.92
	defaultContextLayerConfidence   = 0.8
	defaultInferenceLayerConfidence = 0.7
	defaultSampleLimit              = 12000
)

func (c Config) normalize() Config {
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.AliasLayerConfidence <= 0 {
		c.AliasLayerConfidence = defaultAliasLayerConfidence
	}
	if c.ContextLayerConfidence <= 0 {
		c.ContextLayerConfidence = defaultContextLayerConfidence
	}
	if c.InferenceLayerConfidence <= 0 {
		c.InferenceLayerConfidence = defaultInferenceLayerConfidence
	}
	if c.SampleLimit <= 0 {
		c.SampleLimit = defaultSampleLimit
	}
	return c
}

// request is the per-document resolution state shared by the layers.
// Resolved accumulates accepted values between layers so later layers
// can consult them for mirroring without re-extracting.
type request struct {
	RawText  string
	Lines    []string
	DocType  domain.DocType
	Profile  domain.Profile
	Resolved map[domain.Field]string
}

type layerResolver interface {
	Layer() domain.SourceLayer
	Resolve(ctx context.Context, req *request, pending []domain.Field) map[domain.Field]domain.Candidate
}

type accepted struct {
	value      string
	layer      domain.SourceLayer
	confidence float64
}

// Engine resolves the profile-scoped canonical fields of one document.
type Engine struct {
	cfg    Config
	layers []layerResolver
}

// NewEngine builds the three-layer pipeline. provider may be nil, in
// which case the inference layer runs on its heuristic fallback only.
func NewEngine(provider ports.InferenceProvider, cfg Config) *Engine {
	cfg = cfg.normalize()
	return &Engine{
		cfg: cfg,
		layers: []layerResolver{
			&aliasLayer{confidence: cfg.AliasLayerConfidence},
			&contextLayer{confidence: cfg.ContextLayerConfidence},
			&inferenceLayer{
				provider:    provider,
				confidence:  cfg.InferenceLayerConfidence,
				sampleLimit: cfg.SampleLimit,
			},
		},
	}
}

// Resolve runs the layer pipeline for docType over rawText and returns
// a result for every canonical field: in-scope fields carry the winning
// layer and confidence, out-of-scope fields are marked ignored, and
// in-scope fields no layer produced are marked unresolved and flagged
// for review.
func (e *Engine) Resolve(ctx context.Context, docType domain.DocType, rawText string) map[domain.Field]domain.FieldResult {
	profile := domain.ProfileFor(docType)
	scope := profile.Scope()
	scoped := make(map[domain.Field]struct{}, len(scope))
	for _, f := range scope {
		scoped[f] = struct{}{}
	}

	req := &request{
		RawText:  rawText,
		Lines:    normalizedLines(rawText),
		DocType:  docType,
		Profile:  profile,
		Resolved: make(map[domain.Field]string, len(scope)),
	}

	found := make(map[domain.Field]accepted, len(scope))
	for _, layer := range e.layers {
		pending := pendingFields(scope, found)
		if len(pending) == 0 {
			break
		}
		candidates := layer.Resolve(ctx, req, pending)
		for _, field := range pending {
			cand, ok := candidates[field]
			if !ok || cand.Value == "" {
				continue
			}
			found[field] = accepted{value: cand.Value, layer: layer.Layer(), confidence: cand.Confidence}
			req.Resolved[field] = cand.Value
		}
	}
	e.mirrorDocumentNumber(docType, scoped, found)

	results := make(map[domain.Field]domain.FieldResult, len(domain.CanonicalFields))
	for _, field := range domain.CanonicalFields {
		if _, inScope := scoped[field]; !inScope {
			results[field] = domain.FieldResult{SourceLayer: domain.LayerIgnored}
			continue
		}
		acc, ok := found[field]
		if !ok {
			results[field] = domain.FieldResult{SourceLayer: domain.LayerUnresolved, PendingReview: true}
			continue
		}
		conf := clamp01(acc.confidence)
		results[field] = domain.FieldResult{
			Value:         acc.value,
			SourceLayer:   acc.layer,
			Confidence:    round2(conf),
			PendingReview: conf < e.cfg.ConfidenceThreshold,
		}
	}
	return results
}

// mirrorDocumentNumber fills the generic document number from the
// role-specific number field when the pipeline resolved the donor but
// not the mirror. The mirror inherits the donor's layer and confidence.
func (e *Engine) mirrorDocumentNumber(docType domain.DocType, scoped map[domain.Field]struct{}, found map[domain.Field]accepted) {
	if _, inScope := scoped[domain.FieldDocumentNumber]; !inScope {
		return
	}
	if _, ok := found[domain.FieldDocumentNumber]; ok {
		return
	}
	donor, ok := domain.DocNumberFallback[docType]
	if !ok {
		return
	}
	if acc, ok := found[donor]; ok {
		found[domain.FieldDocumentNumber] = acc
	}
}

func pendingFields(scope []domain.Field, found map[domain.Field]accepted) []domain.Field {
	pending := make([]domain.Field, 0, len(scope))
	for _, f := range scope {
		if _, ok := found[f]; !ok {
			pending = append(pending, f)
		}
	}
	return pending
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
