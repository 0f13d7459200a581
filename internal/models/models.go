package models

import "time"

// Update records one bulletin whose text contained at least one of the
// configured keywords.
type Update struct {
	PDF         string
	Keywords    []string
	URL         string
	ProcessedAt time.Time
}

// RunReport is the outcome of one monitoring run.
//
// Advisories collects best-effort failures that did not abort the run
// (a dedup marker or run-log write that failed), so callers and tests can
// observe them instead of digging through logs.
type RunReport struct {
	Status        string
	Message       string
	LinksFound    int
	Updates       []Update
	Advisories    []string
	ExecutionTime time.Duration
}

// These structs define the JSON envelopes returned by the HTTP trigger.

// SuccessResponse is the 200 body.
type SuccessResponse struct {
	Status        string  `json:"status"`
	UpdatesFound  int     `json:"updates_found"`
	PDFsAnalyzed  int     `json:"pdfs_analyzed"`
	ExecutionTime float64 `json:"execution_time"`
}

// ErrorResponse is the 500 body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
