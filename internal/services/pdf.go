package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/minhlq/vlxd-pos/internal/models"
)

// RenderInvoicePDF produces a printable A4 receipt for one invoice.
// Core PDF fonts are Latin-1 only, so Vietnamese text is transliterated
// through the built-in unicode translator; the numbers are what matter on
// a counter receipt.
func RenderInvoicePDF(storeName string, inv *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("HOA DON BAN HANG #%d", inv.ID)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, tr("Ngay: "+inv.Date.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Khach hang: "+inv.CustomerName), "", 1, "L", false, 0, "")
	if inv.CustomerPhone != nil && *inv.CustomerPhone != "" {
		pdf.CellFormat(0, 6, tr("SDT: "+*inv.CustomerPhone), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Item table header
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 7, tr("San pham"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, tr("DVT"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 7, tr("SL"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, tr("Don gia"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr("Thanh tien"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(70, 7, tr(item.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, tr(item.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, formatQuantity(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatVND(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, formatVND(item.Total), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(145, 8, tr("TONG CONG"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, formatVND(inv.TotalAmount), "1", 1, "R", false, 0, "")

	if inv.Note != nil && *inv.Note != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 5, tr("Ghi chu: "+*inv.Note), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, tr("In luc "+time.Now().Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatVND renders an amount with thousands separators, no decimals
// (Vietnamese đồng has no sub-unit in practice).
func formatVND(amount float64) string {
	n := int64(amount + 0.5)
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		s = fmt.Sprintf("%d", -n)
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if n < 0 {
		return "-" + string(out)
	}
	return string(out)
}

func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}
