package invoices

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var aed = message.NewPrinter(language.English)

// BuildReceiptPDF renders a one-page PDF receipt for an invoice.
func BuildReceiptPDF(inv *Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Shipping Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", inv.InvoiceNo))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", inv.IssuedAt.Format("2 Jan 2006")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Carrier: %s (%s)", inv.Carrier, inv.Speed))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", inv.Status))
	pdf.Ln(5)
	if inv.PaidAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Paid: %s", inv.PaidAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Charge", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Amount (AED)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	rows := []struct {
		label  string
		amount float64
	}{
		{"Base freight", inv.Breakdown.Base},
		{"Fuel surcharge", inv.Breakdown.Fuel},
		{"Remote area surcharge", inv.Breakdown.Remote},
		{"Insurance", inv.Breakdown.Insurance},
	}
	for _, row := range rows {
		pdf.CellFormat(90, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, aed.Sprintf("%.2f", row.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, aed.Sprintf("%.2f", inv.TotalAED), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
