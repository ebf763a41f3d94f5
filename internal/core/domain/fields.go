package domain

// Field identifies one entry of the closed vocabulary of extractable
// trade-document data points. The vocabulary is fixed at compile time;
// profiles only select subsets of it.
type Field string

const (
	FieldDocumentNumber     Field = "document_number"
	FieldInvoiceNumber      Field = "invoice_number"
	FieldPackingListNumber  Field = "packing_list_number"
	FieldBLNumber           Field = "bl_number"
	FieldIssueDate          Field = "issue_date"
	FieldShipmentDate       Field = "shipment_date"
	FieldIssueOrShipment    Field = "issue_or_shipment_date"
	FieldPONumber           Field = "po_number"
	FieldShipper            Field = "shipper"
	FieldConsignee          Field = "consignee"
	FieldConsigneeCNPJ      Field = "consignee_cnpj"
	FieldGoodsDescription   Field = "goods_description"
	FieldFreightValue       Field = "freight_value"
	FieldFreightTerm        Field = "freight_term"
	FieldOriginCountry      Field = "origin_country"
	FieldProvenanceCountry  Field = "provenance_country"
	FieldAcquisitionCountry Field = "acquisition_country"
	FieldDestinationCountry Field = "destination_country"
	FieldPOL                Field = "pol"
	FieldPOD                Field = "pod"
	FieldIncoterm           Field = "incoterm"
	FieldCurrency           Field = "currency"
	FieldNetWeight          Field = "net_weight"
	FieldGrossWeight        Field = "gross_weight"
	FieldVolumeCBM          Field = "volume_cbm"
	FieldPackageCount       Field = "package_count"
	FieldNCM                Field = "ncm"
	FieldTotalValue         Field = "total_value"
	FieldETD                Field = "etd"
	FieldETA                Field = "eta"
)

// CanonicalFields is the full vocabulary in report order. Every resolver
// output covers exactly this set.
var CanonicalFields = []Field{
	FieldDocumentNumber,
	FieldInvoiceNumber,
	FieldPackingListNumber,
	FieldBLNumber,
	FieldIssueDate,
	FieldShipmentDate,
	FieldIssueOrShipment,
	FieldPONumber,
	FieldShipper,
	FieldConsignee,
	FieldConsigneeCNPJ,
	FieldGoodsDescription,
	FieldFreightValue,
	FieldFreightTerm,
	FieldOriginCountry,
	FieldProvenanceCountry,
	FieldAcquisitionCountry,
	FieldDestinationCountry,
	FieldPOL,
	FieldPOD,
	FieldIncoterm,
	FieldCurrency,
	FieldNetWeight,
	FieldGrossWeight,
	FieldVolumeCBM,
	FieldPackageCount,
	FieldNCM,
	FieldTotalValue,
	FieldETD,
	FieldETA,
}

// BaseAliases holds the label phrases used to locate each field in raw
// text, shared across document types. Profiles append role-specific
// aliases on top of these.
var BaseAliases = map[Field][]string{
	FieldDocumentNumber:     {"document number", "número do documento", "doc no"},
	FieldInvoiceNumber:      {"invoice no", "invoice number", "inv#", "commercial invoice number"},
	FieldPackingListNumber:  {"packing list no", "packing list number", "p/l number"},
	FieldBLNumber:           {"bill of lading no", "bl no", "b/l number"},
	FieldIssueDate:          {"issue date", "data de emissão", "invoice date"},
	FieldShipmentDate:       {"shipment date", "embarque", "shipping date"},
	FieldIssueOrShipment:    {"data de emissão / embarque", "issue/shipment date"},
	FieldPONumber:           {"po no", "purchase order", "ordem de compra", "order no"},
	FieldShipper:            {"shipper", "exporter", "exportador", "seller"},
	FieldConsignee:          {"consignee", "importador", "buyer", "importer"},
	FieldConsigneeCNPJ:      {"cnpj do importador", "cnpj consignee", "consignee tax id"},
	FieldGoodsDescription:   {"description of goods", "descrição da mercadoria", "commodity"},
	FieldFreightValue:       {"freight value", "valor do frete", "freight amount"},
	FieldFreightTerm:        {"freight term", "condição do frete", "freight condition"},
	FieldOriginCountry:      {"country of origin", "país de origem", "made in"},
	FieldProvenanceCountry:  {"país de procedência", "country of provenance"},
	FieldAcquisitionCountry: {"país de aquisição", "country of acquisition"},
	FieldDestinationCountry: {"destination", "destination country", "country of destination"},
	FieldPOL:                {"port of loading", "pol", "porto de carregamento"},
	FieldPOD:                {"port of discharge", "pod", "porto de descarga"},
	FieldIncoterm:           {"incoterm", "terms of delivery", "trade term"},
	FieldCurrency:           {"currency", "curr", "invoice currency"},
	FieldNetWeight:          {"net weight", "peso líquido", "n.w.", "nw"},
	FieldGrossWeight:        {"gross weight", "peso bruto", "g.w.", "gw"},
	FieldVolumeCBM:          {"cbm", "cubagem", "volume"},
	FieldPackageCount:       {"total packages", "packages", "quantidade de volumes", "cartons"},
	FieldNCM:                {"ncm", "ncms", "hs code", "hscode"},
	FieldTotalValue:         {"total amount", "total value", "amount due", "invoice total"},
	FieldETD:                {"etd", "estimated time of departure", "departure date"},
	FieldETA:                {"eta", "estimated time of arrival", "arrival date"},
}

// ValuePatterns describes, per field, the shape a raw captured value must
// have. Each pattern carries exactly one capture group.
var ValuePatterns = map[Field]string{
	FieldDocumentNumber:     `([A-Z0-9\-/]{3,})`,
	FieldInvoiceNumber:      `([A-Z0-9\-/]{4,})`,
	FieldPackingListNumber:  `([A-Z0-9\-/]{4,})`,
	FieldBLNumber:           `([A-Z0-9\-/]{4,})`,
	FieldIssueDate:          `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	FieldShipmentDate:       `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	FieldIssueOrShipment:    `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	FieldPONumber:           `([A-Z0-9\-/]{3,})`,
	FieldShipper:            `([A-Za-z0-9&.,\-\s]{3,})`,
	FieldConsignee:          `([A-Za-z0-9&.,\-\s]{3,})`,
	FieldConsigneeCNPJ:      `([0-9./\-]{14,20})`,
	FieldGoodsDescription:   `([A-Za-z0-9,./\-\s]{5,})`,
	FieldFreightValue:       `([0-9][0-9.,]*)`,
	FieldFreightTerm:        `([A-Za-z\s]{3,})`,
	FieldOriginCountry:      `([A-Za-z\s]{3,})`,
	FieldProvenanceCountry:  `([A-Za-z\s]{3,})`,
	FieldAcquisitionCountry: `([A-Za-z\s]{3,})`,
	FieldDestinationCountry: `([A-Za-z\s]{3,})`,
	FieldPOL:                `([A-Za-z\s]{3,})`,
	FieldPOD:                `([A-Za-z\s]{3,})`,
	FieldIncoterm:           `\b([A-Z]{3})\b`,
	FieldCurrency:           `\b([A-Z]{3})\b`,
	FieldNetWeight:          `([0-9][0-9.,]*\s*[A-Za-z]{0,3})`,
	FieldGrossWeight:        `([0-9][0-9.,]*\s*[A-Za-z]{0,3})`,
	FieldVolumeCBM:          `([0-9][0-9.,]*\s*(?:CBM|M3)?)`,
	FieldPackageCount:       `([0-9][0-9.,]*)`,
	FieldNCM:                `([0-9]{4,8}(?:\.[0-9]{2})?)`,
	FieldTotalValue:         `([0-9][0-9.,]*)`,
	FieldETD:                `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
	FieldETA:                `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`,
}
