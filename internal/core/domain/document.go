package domain

import "time"

// DocType is one of the three document roles reconciled against each other.
type DocType string

const (
	DocTypeInvoice     DocType = "invoice"
	DocTypePackingList DocType = "packing_list"
	DocTypeBL          DocType = "bl"
)

// DocTypes lists the roles in canonical comparison order.
var DocTypes = []DocType{DocTypeInvoice, DocTypePackingList, DocTypeBL}

func (d DocType) Valid() bool {
	switch d {
	case DocTypeInvoice, DocTypePackingList, DocTypeBL:
		return true
	}
	return false
}

// SourceLayer records which resolution layer produced a field value.
type SourceLayer string

const (
	LayerAlias      SourceLayer = "A"
	LayerContext    SourceLayer = "B"
	LayerInference  SourceLayer = "C"
	LayerIgnored    SourceLayer = "ignored"
	LayerUnresolved SourceLayer = "unresolved"
)

// Candidate is a single layer's proposed value for one field, before
// acceptance by the resolution engine.
type Candidate struct {
	Value      string
	Confidence float64
}

// FieldResult is the final per-field outcome of resolution.
type FieldResult struct {
	Value         string      `json:"value"`
	SourceLayer   SourceLayer `json:"source_layer"`
	Confidence    float64     `json:"confidence"`
	PendingReview bool        `json:"pending_review"`
}

type ExtractionMethod string

const (
	ExtractionNative ExtractionMethod = "native"
	ExtractionOCR    ExtractionMethod = "ocr"
)

// OCRPageMetric carries quality figures for one OCR'd page.
type OCRPageMetric struct {
	PageNumber          int     `json:"page_number"`
	CharacterCount      int     `json:"character_count"`
	ValidWordCount      int     `json:"valid_word_count"`
	EstimatedConfidence float64 `json:"estimated_confidence"`
	RotationApplied     float64 `json:"rotation_applied"`
}

// OCRPage is the raw recognition output for one rendered page as handed
// over by the text-extraction collaborator: page text plus parallel
// token/confidence arrays (confidence on a 0-100 scale, possibly
// unparsable).
type OCRPage struct {
	Number      int
	Text        string
	Tokens      []string
	Confidences []string
	Rotation    float64
}

// ExtractedText is a text-extraction collaborator's output for one upload.
type ExtractedText struct {
	Text   string
	Method ExtractionMethod
	Pages  []OCRPage
}

// LineItem is one heuristically detected goods line.
type LineItem struct {
	Line     string `json:"line"`
	Quantity string `json:"quantity"`
	Amount   string `json:"amount"`
}

// DocumentRecord is the immutable result of processing one upload. It is
// created once and owned by its session; a later upload for the same role
// replaces it wholesale.
type DocumentRecord struct {
	DocType          DocType               `json:"doc_type"`
	Filename         string                `json:"filename"`
	ExtractedAt      time.Time             `json:"extracted_at"`
	RawTextPreview   string                `json:"raw_text_preview"`
	Fields           map[Field]FieldResult `json:"fields"`
	LineItems        []LineItem            `json:"line_items"`
	ExtractionMethod ExtractionMethod      `json:"extraction_method"`
	LowOCRConfidence bool                  `json:"low_ocr_confidence"`
	OCRQuality       []OCRPageMetric       `json:"ocr_quality"`
}

// Session maps document roles to their current records. At most one
// record per role; replacement is last-write-wins.
type Session map[DocType]*DocumentRecord

// DocumentTask is the queue message produced by an upload and consumed
// by the processing worker.
type DocumentTask struct {
	SessionID  string    `json:"session_id"`
	DocType    DocType   `json:"doc_type"`
	StorageKey string    `json:"storage_key"`
	Filename   string    `json:"filename"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
