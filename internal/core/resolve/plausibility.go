package resolve

import (
	"strings"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// noiseValues are bare labels that alias-adjacent matching occasionally
// captures instead of a value. They are never acceptable as field values.
var noiseValues = map[string]struct{}{
	"consignee":    {},
	"shipper":      {},
	"date":         {},
	"number":       {},
	"no":           {},
	"order no":     {},
	"invoice":      {},
	"packing list": {},
	"total":        {},
	"value":        {},
	"amount":       {},
	"origin":       {},
	"destination":  {},
}

var identifierFields = map[domain.Field]struct{}{
	domain.FieldDocumentNumber:    {},
	domain.FieldInvoiceNumber:     {},
	domain.FieldPackingListNumber: {},
	domain.FieldBLNumber:          {},
	domain.FieldPONumber:          {},
	domain.FieldNCM:               {},
}

var numericFields = map[domain.Field]struct{}{
	domain.FieldFreightValue: {},
	domain.FieldTotalValue:   {},
	domain.FieldNetWeight:    {},
	domain.FieldGrossWeight:  {},
	domain.FieldVolumeCBM:    {},
	domain.FieldPackageCount: {},
}

var placeFields = map[domain.Field]struct{}{
	domain.FieldOriginCountry:      {},
	domain.FieldProvenanceCountry:  {},
	domain.FieldAcquisitionCountry: {},
	domain.FieldDestinationCountry: {},
	domain.FieldPOL:                {},
	domain.FieldPOD:                {},
}

// plausible applies the field-class sanity checks shared by every
// resolution layer. Rejected values leave the field unresolved.
func plausible(field domain.Field, value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	if _, noisy := noiseValues[strings.ToLower(v)]; noisy {
		return false
	}

	digits := countDigits(v)
	switch {
	case field == domain.FieldConsigneeCNPJ:
		// Brazilian CNPJ: exactly 14 digits once punctuation is stripped.
		return digits == 14
	case isSet(identifierFields, field):
		return digits > 0 && len(v) >= 3
	case field == domain.FieldShipper || field == domain.FieldConsignee:
		return digits > 0 || len(strings.Fields(v)) >= 2
	case isSet(numericFields, field):
		return digits > 0
	case isSet(placeFields, field):
		return digits == 0
	}
	return true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func isSet(set map[domain.Field]struct{}, field domain.Field) bool {
	_, ok := set[field]
	return ok
}
