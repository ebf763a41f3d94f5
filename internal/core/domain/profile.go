package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile defines, for one document role, which fields are relevant (in
// priority order), role-specific alias phrases on top of BaseAliases, and
// which fields must be present for the role to pass required-completeness.
type Profile struct {
	DocType       DocType
	FieldPriority []Field
	ExtraAliases  map[Field][]string
	Required      []Field
}

var builtinProfiles = map[DocType]Profile{
	DocTypeInvoice: {
		DocType: DocTypeInvoice,
		FieldPriority: []Field{
			FieldInvoiceNumber,
			FieldDocumentNumber,
			FieldIssueDate,
			FieldPONumber,
			FieldShipper,
			FieldConsignee,
			FieldConsigneeCNPJ,
			FieldGoodsDescription,
			FieldTotalValue,
			FieldCurrency,
			FieldFreightValue,
			FieldFreightTerm,
			FieldIncoterm,
			FieldOriginCountry,
			FieldProvenanceCountry,
			FieldAcquisitionCountry,
			FieldDestinationCountry,
			FieldNetWeight,
			FieldGrossWeight,
			FieldVolumeCBM,
			FieldPackageCount,
			FieldNCM,
		},
		ExtraAliases: map[Field][]string{
			FieldInvoiceNumber: {"invoice n°", "invoice nr", "invoice num"},
			FieldIssueDate:     {"date of issue", "invoice issued on"},
		},
		Required: []Field{
			FieldInvoiceNumber,
			FieldIssueDate,
			FieldShipper,
			FieldConsignee,
			FieldTotalValue,
			FieldIncoterm,
		},
	},
	DocTypePackingList: {
		DocType: DocTypePackingList,
		FieldPriority: []Field{
			FieldPackingListNumber,
			FieldDocumentNumber,
			FieldShipmentDate,
			FieldIssueOrShipment,
			FieldPONumber,
			FieldShipper,
			FieldConsignee,
			FieldConsigneeCNPJ,
			FieldGoodsDescription,
			FieldOriginCountry,
			FieldDestinationCountry,
			FieldNetWeight,
			FieldGrossWeight,
			FieldVolumeCBM,
			FieldPackageCount,
			FieldNCM,
		},
		ExtraAliases: map[Field][]string{
			FieldPackingListNumber: {"p/l no", "packing list n°", "packing no"},
			FieldPackageCount:      {"qty packages", "number of packages"},
		},
		Required: []Field{
			FieldPackingListNumber,
			FieldShipper,
			FieldConsignee,
			FieldNetWeight,
			FieldGrossWeight,
			FieldPackageCount,
		},
	},
	DocTypeBL: {
		DocType: DocTypeBL,
		FieldPriority: []Field{
			FieldBLNumber,
			FieldDocumentNumber,
			FieldShipmentDate,
			FieldIssueOrShipment,
			FieldShipper,
			FieldConsignee,
			FieldConsigneeCNPJ,
			FieldGoodsDescription,
			FieldFreightTerm,
			FieldOriginCountry,
			FieldDestinationCountry,
			FieldPOL,
			FieldPOD,
			FieldETD,
			FieldETA,
			FieldNetWeight,
			FieldGrossWeight,
			FieldVolumeCBM,
			FieldPackageCount,
		},
		ExtraAliases: map[Field][]string{
			FieldBLNumber: {"b/l no", "bol no", "bill of lading number"},
			FieldPOL:      {"load port", "port load"},
			FieldPOD:      {"discharge port", "port discharge"},
		},
		Required: []Field{
			FieldBLNumber,
			FieldShipper,
			FieldConsignee,
			FieldPOL,
			FieldPOD,
			FieldFreightTerm,
		},
	},
}

// DocNumberFallback maps each role to the field its generic document
// number mirrors when unresolved.
var DocNumberFallback = map[DocType]Field{
	DocTypeInvoice:     FieldInvoiceNumber,
	DocTypePackingList: FieldPackingListNumber,
	DocTypeBL:          FieldBLNumber,
}

// ProfileFor returns the effective profile for a role. Unknown roles get
// the full vocabulary with base aliases only.
func ProfileFor(docType DocType) Profile {
	if p, ok := builtinProfiles[docType]; ok {
		return p
	}
	return Profile{DocType: docType, FieldPriority: append([]Field(nil), CanonicalFields...)}
}

// Scope returns the in-scope fields in resolution priority order. The
// generic document number is always trackable, so it is injected right
// after the lead field when a profile omits it.
func (p Profile) Scope() []Field {
	fields := make([]Field, 0, len(p.FieldPriority)+1)
	known := make(map[Field]struct{}, len(CanonicalFields))
	for _, f := range CanonicalFields {
		known[f] = struct{}{}
	}
	hasDocNumber := false
	for _, f := range p.FieldPriority {
		if _, ok := known[f]; !ok {
			continue
		}
		if f == FieldDocumentNumber {
			hasDocNumber = true
		}
		fields = append(fields, f)
	}
	if !hasDocNumber {
		at := 0
		if len(fields) > 1 {
			at = 1
		}
		fields = append(fields[:at], append([]Field{FieldDocumentNumber}, fields[at:]...)...)
	}
	return fields
}

// AliasesFor returns the base aliases for a field followed by the
// profile's role-specific additions, in listed order.
func (p Profile) AliasesFor(field Field) []string {
	aliases := append([]string(nil), BaseAliases[field]...)
	return append(aliases, p.ExtraAliases[field]...)
}

// ProfileOverrides is the optional operator-supplied YAML document that
// extends built-in profiles. Overrides are additive: aliases are appended
// and required lists replace the built-in list only when non-empty.
type ProfileOverrides struct {
	Aliases  map[string]map[string][]string `yaml:"aliases"`
	Required map[string][]string            `yaml:"required_fields"`
}

// LoadProfileOverrides reads and applies an overrides file to the built-in
// profiles. An empty path is a no-op.
func LoadProfileOverrides(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile overrides: %w", err)
	}
	var ov ProfileOverrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse profile overrides: %w", err)
	}
	ApplyProfileOverrides(ov)
	return nil
}

// ApplyProfileOverrides merges overrides into the built-in profiles.
func ApplyProfileOverrides(ov ProfileOverrides) {
	for docType, fieldAliases := range ov.Aliases {
		profile, ok := builtinProfiles[DocType(docType)]
		if !ok {
			continue
		}
		if profile.ExtraAliases == nil {
			profile.ExtraAliases = make(map[Field][]string)
		}
		for field, extra := range fieldAliases {
			profile.ExtraAliases[Field(field)] = append(profile.ExtraAliases[Field(field)], extra...)
		}
		builtinProfiles[DocType(docType)] = profile
	}
	for docType, required := range ov.Required {
		profile, ok := builtinProfiles[DocType(docType)]
		if !ok || len(required) == 0 {
			continue
		}
		fields := make([]Field, 0, len(required))
		for _, f := range required {
			fields = append(fields, Field(f))
		}
		profile.Required = fields
		builtinProfiles[DocType(docType)] = profile
	}
}
