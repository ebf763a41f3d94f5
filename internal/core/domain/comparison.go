package domain

import "time"

// ComparisonStatus is the overall verdict of a cross-document analysis.
// It is a pure function of the computed findings, never set directly.
type ComparisonStatus string

const (
	StatusApproved        ComparisonStatus = "approved"
	StatusWithDivergences ComparisonStatus = "with_divergences"
)

// MatrixRow is one side-by-side comparison line for a tracked field.
type MatrixRow struct {
	Field       Field  `json:"field"`
	Label       string `json:"label"`
	Invoice     string `json:"invoice"`
	PackingList string `json:"packing_list"`
	BL          string `json:"bl"`
}

// CompletenessMetrics summarizes how much of the tracked field set one
// document role managed to fill.
type CompletenessMetrics struct {
	FilledComparative    int     `json:"filled_comparative"`
	TotalComparative     int     `json:"total_comparative"`
	ComparativeRatio     float64 `json:"comparative_ratio"`
	BelowMinimum         bool    `json:"below_minimum"`
	FilledRequired       int     `json:"filled_required"`
	TotalRequired        int     `json:"total_required"`
	RequiredRatio        float64 `json:"required_ratio"`
	BelowRequiredMinimum bool    `json:"below_required_minimum"`
	MissingRequired      []Field `json:"missing_required"`
}

// ComparisonResult is the full output of cross-document reconciliation.
// Divergences carries the status-driving findings in emission order:
// field conflicts first, then pendencies. OCRAlerts are advisory and
// never influence the status, so they live outside Divergences to keep
// the status a pure function of that list plus the completeness floors.
type ComparisonResult struct {
	Status       ComparisonStatus                `json:"status"`
	Matrix       []MatrixRow                     `json:"matrix"`
	Divergences  []string                        `json:"divergences"`
	OCRAlerts    []string                        `json:"ocr_alerts"`
	Completeness map[DocType]CompletenessMetrics `json:"completeness"`
}

// SessionReport is the downloadable analysis artifact.
type SessionReport struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Documents   map[DocType]*DocumentRecord `json:"documents"`
	Analysis    *ComparisonResult           `json:"analysis"`
}
