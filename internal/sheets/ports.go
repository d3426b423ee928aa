// Package sheets defines the outbound spreadsheet ports used by the export
// worker. Implementations live in subpackages (google, memory).
package sheets

import "context"

// ExportRow is one appended spreadsheet line for an exported record.
type ExportRow struct {
	Kind      string // "expense" or "income"
	Name      string
	Amount    string // formatted decimal, e.g. "3750.00"
	Date      string // ISO calendar date
	Frequency string
	Category  string // category name for expenses, source for incomes
}

// RowAppender appends a single row and returns a reference to where it landed.
type RowAppender interface {
	AppendRow(ctx context.Context, row ExportRow) (rowRef string, err error)
}
