// Package report renders wage reports and timesheet errors.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bryan-cox/wageledger/internal/model"
	"github.com/bryan-cox/wageledger/internal/timesheet"
)

// Section headers for text output.
const (
	TextBanner       = "=======Autogenerated by WageLedger======="
	TextHeaderErrors = "Errors"
)

// PrintMonthlyReports prints every month, one worker row followed by that
// worker's day rows.
func PrintMonthlyReports(out io.Writer, reports []model.MonthlyReport) {
	for i, monthly := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		PrintMonth(out, monthly)
	}
}

// PrintMonth prints a single month.
func PrintMonth(out io.Writer, monthly model.MonthlyReport) {
	fmt.Fprintf(out, "Month %d/%d\n", int(monthly.Month), monthly.Year)
	fmt.Fprintln(out, TextBanner)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tName\tRegular\tEvening\tOvertime\tTotal\t")
	for _, worker := range monthly.Workers {
		fmt.Fprintf(tw, "    • %d\t%s\t%s\t\n", worker.ID, worker.Name, amountCells(worker.MonthlyWages))
		for _, day := range worker.DailyWages {
			fmt.Fprintf(tw, "        ◦\t%s\t%s\t\n", day.Date, amountCells(day.Wages))
		}
	}
	tw.Flush()
}

func amountCells(b model.WageBreakdown) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s",
		b.Regular.StringFixed(2),
		b.Evening.StringFixed(2),
		b.Overtime.StringFixed(2),
		b.Total.StringFixed(2))
}

// PrintRowErrors prints one line per invalid row. Rows are shown one-based.
func PrintRowErrors(out io.Writer, rows []timesheet.RowError) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out, TextHeaderErrors)
	for _, row := range rows {
		fmt.Fprintf(out, "    • Error on row %d: %q\n", row.Row+1, row.Message)
	}
}
