// Package domain holds the canonical data model shared across the
// normalization pipeline: raw extracted tables, the canonical rent roll and
// income statement, the trend decision, applied adjustments, and the final
// underwritten summary. Every type is an immutable value record produced by
// one pipeline stage and consumed read-only by the next.
package domain
