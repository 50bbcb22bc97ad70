// Package normalize reconciles raw extracted tables into the canonical
// rent roll and income statement schemas.
//
// Column and label matching is driven by priority-ordered synonym tables
// (see columns.go and statement.go) so the mappings are testable without
// parsing rows. The failure-tolerance policy is flag-don't-drop: a value
// that cannot be parsed yields a nil field plus a FieldFlag, and the only
// fatal conditions are a rent roll with zero parsable rows and an income
// statement with no locatable NOI row.
package normalize
