package report

import (
	"encoding/json"
	"io"

	"github.com/bryan-cox/wageledger/internal/model"
	"github.com/bryan-cox/wageledger/internal/timesheet"
)

// Result is the machine-readable outcome of one timesheet: either Months or
// Errors is set.
type Result struct {
	Source string                `json:"source,omitempty"`
	Months []model.MonthlyReport `json:"months,omitempty"`
	Errors []timesheet.RowError  `json:"errors,omitempty"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
