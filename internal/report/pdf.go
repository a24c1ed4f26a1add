package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/bryan-cox/wageledger/internal/model"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 40, "L"},
	{"Regular", 35, "R"},
	{"Evening", 35, "R"},
	{"Overtime", 35, "R"},
	{"Total", 35, "R"},
}

// WritePayslips writes a PDF with one payslip page per worker per month.
func WritePayslips(out io.Writer, reports []model.MonthlyReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslips", true)
	pdf.SetCreator("WageLedger", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, monthly := range reports {
		for _, worker := range monthly.Workers {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 16)
			pdf.Cell(40, 10, "Payslip")
			pdf.Ln(12)

			pdf.SetFont("Helvetica", "", 12)
			pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s (id %d)", worker.Name, worker.ID)))
			pdf.Ln(7)
			pdf.Cell(0, 8, fmt.Sprintf("Period: %d/%d", int(monthly.Month), monthly.Year))
			pdf.Ln(12)

			pdf.SetFont("Helvetica", "B", 11)
			for _, col := range pdfColumns {
				pdf.CellFormat(col.width, 8, col.title, "B", 0, col.align, false, 0, "")
			}
			pdf.Ln(-1)

			pdf.SetFont("Helvetica", "", 11)
			for _, day := range worker.DailyWages {
				payslipRow(pdf, day.Date, day.Wages, "")
			}
			pdf.SetFont("Helvetica", "B", 11)
			payslipRow(pdf, "Month total", worker.MonthlyWages, "T")
		}
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("could not write payslips: %w", err)
	}
	return nil
}

func payslipRow(pdf *gofpdf.Fpdf, label string, b model.WageBreakdown, border string) {
	cells := []string{
		label,
		b.Regular.StringFixed(2),
		b.Evening.StringFixed(2),
		b.Overtime.StringFixed(2),
		b.Total.StringFixed(2),
	}
	for i, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, cells[i], border, 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)
}
