package resolve

import (
	"context"
	"regexp"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
)

// inferenceLayer is Layer C: a single bounded request to the external
// semantic-inference provider, with a local heuristic pass when the
// provider is absent, fails, or times out. Provider failure is not an
// error at this level; the fallback is the contract.
type inferenceLayer struct {
	provider    ports.InferenceProvider
	confidence  float64
	sampleLimit int
}

func (l *inferenceLayer) Layer() domain.SourceLayer { return domain.LayerInference }

func (l *inferenceLayer) Resolve(ctx context.Context, req *request, pending []domain.Field) map[domain.Field]domain.Candidate {
	values := l.fromProvider(ctx, req, pending)
	if values == nil {
		values = heuristicPass(req.RawText, pending, req.DocType, req.Resolved)
	}

	out := make(map[domain.Field]domain.Candidate, len(pending))
	for _, field := range pending {
		value := NormalizeSpaces(values[field])
		if value != "" && plausible(field, value) {
			out[field] = domain.Candidate{Value: value, Confidence: l.confidence}
		}
	}
	return out
}

func (l *inferenceLayer) fromProvider(ctx context.Context, req *request, pending []domain.Field) map[domain.Field]string {
	if l.provider == nil {
		return nil
	}
	sample := truncateSample(req.RawText, l.sampleLimit)
	values, err := l.provider.ExtractFields(ctx, sample, pending)
	if err != nil || values == nil {
		return nil
	}
	return values
}

type heuristicRule struct {
	field domain.Field
	re    *regexp.Regexp
}

// heuristicRules is the fixed local extraction table applied to the full
// raw text when the inference provider cannot be used.
var heuristicRules = []heuristicRule{
	{domain.FieldInvoiceNumber, regexp.MustCompile(`(?i)invoice\s*(?:no|number|#)?\s*[:\-]?\s*([A-Z0-9\-/]{4,})`)},
	{domain.FieldPackingListNumber, regexp.MustCompile(`(?i)packing\s*list\s*(?:no|number|#)?\s*[:\-]?\s*([A-Z0-9\-/]{4,})`)},
	{domain.FieldBLNumber, regexp.MustCompile(`(?i)(?:bill\s*of\s*lading|b/?l)\s*(?:no|number|#)?\s*[:\-]?\s*([A-Z0-9\-/]{4,})`)},
	{domain.FieldPONumber, regexp.MustCompile(`(?i)(?:po|purchase\s*order|ordem\s*de\s*compra)\s*(?:no|number|#)?\s*[:\-]?\s*([A-Z0-9\-/]{3,})`)},
	{domain.FieldConsigneeCNPJ, regexp.MustCompile(`(?i)cnpj\s*(?:do\s*importador|consignee)?\s*[:\-]?\s*([0-9./\-]{14,20})`)},
	{domain.FieldGoodsDescription, regexp.MustCompile(`(?i)(?:description\s*of\s*goods|descrição\s*da\s*mercadoria)\s*[:\-]?\s*([^\n]{5,120})`)},
	{domain.FieldFreightValue, regexp.MustCompile(`(?i)(?:freight\s*value|valor\s*do\s*frete)\s*[:\-]?\s*([0-9.,]+)`)},
	{domain.FieldFreightTerm, regexp.MustCompile(`(?i)(?:freight\s*term|condição\s*do\s*frete)\s*[:\-]?\s*([^\n]{3,40})`)},
	{domain.FieldPOL, regexp.MustCompile(`(?i)(?:port\s*of\s*loading|pol|porto\s*de\s*carregamento)\s*[:\-]?\s*([^\n]{3,40})`)},
	{domain.FieldPOD, regexp.MustCompile(`(?i)(?:port\s*of\s*discharge|pod|porto\s*de\s*descarga)\s*[:\-]?\s*([^\n]{3,40})`)},
	{domain.FieldVolumeCBM, regexp.MustCompile(`(?i)(?:cbm|cubagem)\s*[:\-]?\s*([0-9.,]+(?:\s*(?:CBM|M3))?)`)},
	{domain.FieldNCM, regexp.MustCompile(`(?i)(?:ncm|ncms|hs\s*code)\s*[:\-]?\s*([0-9]{4,8}(?:\.[0-9]{2})?)`)},
}

// dateMirrorDonors is the priority order used to synthesize the generic
// issue-or-shipment date.
var dateMirrorDonors = []domain.Field{
	domain.FieldIssueDate,
	domain.FieldShipmentDate,
	domain.FieldETD,
	domain.FieldETA,
}

// heuristicPass applies the rule table to the raw text, then the two
// mirroring rules: the generic document number mirrors the role-specific
// number field, and the generic issue-or-shipment date mirrors the first
// populated date field in donor priority order. known carries values
// already accepted by earlier layers so mirrors can draw on them too.
func heuristicPass(rawText string, pending []domain.Field, docType domain.DocType, known map[domain.Field]string) map[domain.Field]string {
	pendingSet := make(map[domain.Field]struct{}, len(pending))
	for _, f := range pending {
		pendingSet[f] = struct{}{}
	}

	out := make(map[domain.Field]string, len(pending))
	for _, rule := range heuristicRules {
		if _, want := pendingSet[rule.field]; !want {
			continue
		}
		if m := rule.re.FindStringSubmatch(rawText); m != nil {
			out[rule.field] = NormalizeSpaces(m[1])
		}
	}

	lookup := func(field domain.Field) string {
		if v := out[field]; v != "" {
			return v
		}
		return known[field]
	}

	if _, want := pendingSet[domain.FieldDocumentNumber]; want && out[domain.FieldDocumentNumber] == "" {
		if donor, ok := domain.DocNumberFallback[docType]; ok {
			out[domain.FieldDocumentNumber] = lookup(donor)
		}
	}
	if _, want := pendingSet[domain.FieldIssueOrShipment]; want && out[domain.FieldIssueOrShipment] == "" {
		for _, donor := range dateMirrorDonors {
			if v := lookup(donor); v != "" {
				out[domain.FieldIssueOrShipment] = v
				break
			}
		}
	}
	if _, want := pendingSet[domain.FieldShipmentDate]; want && out[domain.FieldShipmentDate] == "" {
		if v := lookup(domain.FieldETD); v != "" {
			out[domain.FieldShipmentDate] = v
		}
	}
	return out
}
