// Package reconcile cross-checks the resolved field sets of the
// documents accumulated in one session and produces the comparison
// matrix, findings, and overall status of the cargo analysis.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// Config carries the completeness floors. Zero values fall back to the
// defaults below.
type Config struct {
	ComparativeMinimum float64
	RequiredMinimum    float64
}

const (
	defaultComparativeMinimum = 0.6
	defaultRequiredMinimum    = 0.8
)

func (c Config) normalize() Config {
	if c.ComparativeMinimum <= 0 {
		c.ComparativeMinimum = defaultComparativeMinimum
	}
	if c.RequiredMinimum <= 0 {
		c.RequiredMinimum = defaultRequiredMinimum
	}
	return c
}

type comparativeField struct {
	field domain.Field
	label string
}

// comparativeFields is the fixed matrix row order. The first and fifth
// entries are synthesized per role when the generic field is empty.
var comparativeFields = []comparativeField{
	{domain.FieldDocumentNumber, "Document number"},
	{domain.FieldInvoiceNumber, "Invoice number"},
	{domain.FieldPackingListNumber, "Packing list number"},
	{domain.FieldBLNumber, "B/L number"},
	{domain.FieldIssueOrShipment, "Issue/shipment date"},
	{domain.FieldPONumber, "PO number"},
	{domain.FieldShipper, "Shipper"},
	{domain.FieldConsignee, "Consignee"},
	{domain.FieldOriginCountry, "Country of origin"},
	{domain.FieldDestinationCountry, "Destination country"},
	{domain.FieldIncoterm, "Incoterm"},
	{domain.FieldCurrency, "Currency"},
	{domain.FieldPackageCount, "Package count"},
	{domain.FieldNetWeight, "Net weight"},
	{domain.FieldGrossWeight, "Gross weight"},
	{domain.FieldTotalValue, "Total value"},
	{domain.FieldETD, "ETD"},
	{domain.FieldETA, "ETA"},
}

// issueOrShipmentDonors is the date priority used when a role never
// resolved the generic issue-or-shipment date directly.
var issueOrShipmentDonors = []domain.Field{
	domain.FieldIssueDate,
	domain.FieldShipmentDate,
	domain.FieldETD,
	domain.FieldETA,
}

// Compare builds the comparison matrix across the session's documents,
// computes per-role completeness, and derives the overall status. The
// status is approved exactly when the findings list is empty and no
// role sits below a completeness floor; OCR reliability alerts are
// advisory and reported separately.
func Compare(session domain.Session, cfg Config) domain.ComparisonResult {
	cfg = cfg.normalize()

	matrix := make([]domain.MatrixRow, 0, len(comparativeFields))
	findings := make([]string, 0, 4)
	alerts := make([]string, 0, len(domain.DocTypes))
	fieldDivergences := 0

	for _, cf := range comparativeFields {
		row := domain.MatrixRow{
			Field:       cf.field,
			Label:       cf.label,
			Invoice:     roleValue(session[domain.DocTypeInvoice], cf.field),
			PackingList: roleValue(session[domain.DocTypePackingList], cf.field),
			BL:          roleValue(session[domain.DocTypeBL], cf.field),
		}
		matrix = append(matrix, row)
		if diverges(row) {
			fieldDivergences++
			findings = append(findings, fmt.Sprintf("Divergence in field %q: values differ across documents.", cf.label))
		}
	}

	missing := missingRoles(session)
	if len(missing) > 0 {
		findings = append(findings, fmt.Sprintf("Pendency: documents missing for cross-document analysis: %s.", strings.Join(missing, ", ")))
	}

	completeness := make(map[domain.DocType]domain.CompletenessMetrics, len(session))
	belowAny := false
	for _, docType := range domain.DocTypes {
		doc, ok := session[docType]
		if !ok || doc == nil {
			continue
		}
		metrics := roleCompleteness(docType, doc, matrix, cfg)
		completeness[docType] = metrics
		if metrics.BelowMinimum {
			belowAny = true
			findings = append(findings, fmt.Sprintf(
				"Completeness pendency: %s filled %d of %d comparative fields (ratio %.2f, minimum %.2f).",
				docType, metrics.FilledComparative, metrics.TotalComparative, metrics.ComparativeRatio, cfg.ComparativeMinimum))
		}
		if metrics.BelowRequiredMinimum {
			belowAny = true
			findings = append(findings, fmt.Sprintf(
				"Required completeness pendency: %s missing %d of %d required fields (ratio %.2f, minimum %.2f): %s.",
				docType, len(metrics.MissingRequired), metrics.TotalRequired, metrics.RequiredRatio, cfg.RequiredMinimum,
				joinFields(metrics.MissingRequired)))
		}
		if doc.LowOCRConfidence {
			alerts = append(alerts, fmt.Sprintf(
				"OCR reliability alert: %s was extracted with low OCR confidence, manual review recommended.", docType))
		}
	}

	status := domain.StatusApproved
	if fieldDivergences > 0 || len(missing) > 0 || belowAny {
		status = domain.StatusWithDivergences
	}
	return domain.ComparisonResult{
		Status:       status,
		Matrix:       matrix,
		Divergences:  findings,
		OCRAlerts:    alerts,
		Completeness: completeness,
	}
}

// roleValue resolves one matrix cell, applying the synthesis rules for
// the generic document number and issue-or-shipment date.
func roleValue(doc *domain.DocumentRecord, field domain.Field) string {
	if doc == nil {
		return ""
	}
	if v := fieldValue(doc, field); v != "" {
		return v
	}
	switch field {
	case domain.FieldDocumentNumber:
		if donor, ok := domain.DocNumberFallback[doc.DocType]; ok {
			return fieldValue(doc, donor)
		}
	case domain.FieldIssueOrShipment:
		for _, donor := range issueOrShipmentDonors {
			if v := fieldValue(doc, donor); v != "" {
				return v
			}
		}
	}
	return ""
}

func fieldValue(doc *domain.DocumentRecord, field domain.Field) string {
	return doc.Fields[field].Value
}

// diverges reports whether two or more roles filled the row with values
// that are not all identical, compared case-insensitively.
func diverges(row domain.MatrixRow) bool {
	seen := make(map[string]struct{}, 3)
	filled := 0
	for _, v := range []string{row.Invoice, row.PackingList, row.BL} {
		if v == "" {
			continue
		}
		filled++
		seen[strings.ToLower(v)] = struct{}{}
	}
	return filled >= 2 && len(seen) > 1
}

// missingRoles lists absent roles in canonical document order.
func missingRoles(session domain.Session) []string {
	missing := make([]string, 0, len(domain.DocTypes))
	for _, docType := range domain.DocTypes {
		if doc, ok := session[docType]; !ok || doc == nil {
			missing = append(missing, string(docType))
		}
	}
	return missing
}

// roleCompleteness measures one role against the floors. The floor
// comparisons use the exact ratios; rounding happens only on the stored
// display values.
func roleCompleteness(docType domain.DocType, doc *domain.DocumentRecord, matrix []domain.MatrixRow, cfg Config) domain.CompletenessMetrics {
	filled := 0
	for _, row := range matrix {
		if cell(row, docType) != "" {
			filled++
		}
	}
	comparativeRatio := ratio(filled, len(matrix))

	required := domain.ProfileFor(docType).Required
	missing := make([]domain.Field, 0, len(required))
	for _, field := range required {
		if fieldValue(doc, field) == "" {
			missing = append(missing, field)
		}
	}
	requiredRatio := 1.0
	if len(required) > 0 {
		requiredRatio = ratio(len(required)-len(missing), len(required))
	}

	return domain.CompletenessMetrics{
		FilledComparative:    filled,
		TotalComparative:     len(matrix),
		ComparativeRatio:     round2(comparativeRatio),
		BelowMinimum:         comparativeRatio < cfg.ComparativeMinimum,
		FilledRequired:       len(required) - len(missing),
		TotalRequired:        len(required),
		RequiredRatio:        round2(requiredRatio),
		BelowRequiredMinimum: requiredRatio < cfg.RequiredMinimum,
		MissingRequired:      missing,
	}
}

func cell(row domain.MatrixRow, docType domain.DocType) string {
	switch docType {
	case domain.DocTypeInvoice:
		return row.Invoice
	case domain.DocTypePackingList:
		return row.PackingList
	case domain.DocTypeBL:
		return row.BL
	}
	return ""
}

func ratio(filled, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func joinFields(fields []domain.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, string(f))
	}
	return strings.Join(parts, ", ")
}
