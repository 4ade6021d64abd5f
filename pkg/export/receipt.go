package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt describes a single fee payment for PDF rendering.
type Receipt struct {
	SchoolName    string
	SchoolAddress string
	ReceiptNumber string
	StudentName   string
	StudentCode   string
	Class         string
	Section       string
	AcademicYear  string
	Amount        int64
	Method        string
	PaymentDate   time.Time
	Remarks       string
}

// ReceiptRenderer produces printable payment receipts.
type ReceiptRenderer struct{}

// NewReceiptRenderer builds a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render creates an A5 receipt PDF for the payment.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.ReceiptNumber == "" {
		return nil, fmt.Errorf("receipt number required")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, strings.ToUpper(receipt.SchoolName), "", 1, "C", false, 0, "")
	if receipt.SchoolAddress != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, receipt.SchoolAddress, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "FEE RECEIPT", "T", 1, "C", false, 0, "")
	pdf.Ln(2)

	rows := [][2]string{
		{"Receipt No", receipt.ReceiptNumber},
		{"Date", receipt.PaymentDate.Format("02 Jan 2006")},
		{"Student", fmt.Sprintf("%s (%s)", receipt.StudentName, receipt.StudentCode)},
		{"Class", fmt.Sprintf("%s - %s", receipt.Class, receipt.Section)},
		{"Academic Year", receipt.AcademicYear},
		{"Amount", fmt.Sprintf("Rs. %d", receipt.Amount)},
		{"Mode", strings.ReplaceAll(receipt.Method, "_", " ")},
	}
	if receipt.Remarks != "" {
		rows = append(rows, [2]string{"Remarks", receipt.Remarks})
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(38, 7, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(86, 7, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "This is a system generated receipt.", "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
