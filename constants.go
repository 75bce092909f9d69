// constants.go
package main

// Constants for evidence aggregation and LLM prompt assembly
const (
	EscalationStatusOpen = "OPEN" // Escalations are created open and never transition

	// Per-document character budgets applied before prompt assembly.
	// Truncation is by raw character count, not tokens.
	EvidenceSummaryCharBudget = 2000
	GapAnalysisCharBudget     = 1500
	ChatCharBudget            = 1000

	// GitHub listing page sizes
	EvidencePageSize = 20 // Generic commit/PR/issue evidence
	ReportPageSize   = 50 // PR review reports

	StaleReviewThresholdHours = 24 // Open PRs older than this with no reviews are stale
	RecentMergeWindowDays     = 7  // Window for the recently-merged report
)
