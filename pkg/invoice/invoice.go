// Package invoice renders order invoices as PDF documents in memory.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"kalamkart/pkg/utils"

	"github.com/go-pdf/fpdf"
)

// Line is one purchased product as it was priced at order time.
type Line struct {
	Name     string
	Quantity int
	Price    float64
}

// Document carries everything printed on an invoice.
type Document struct {
	OrderID         string
	Date            time.Time
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Items           []Line
	TotalAmount     float64
	Discount        float64
	CouponCode      string
}

type Option func(*Renderer)

// WithCompression toggles stream compression. Tests turn it off to read the text back.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compress = on
	}
}

// Renderer is stateless; Render may be called concurrently.
type Renderer struct {
	compress bool
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const (
	marginMM   = 15.0
	lineHeight = 7.0
)

// Render produces the A4 invoice. Equal documents yield equal bytes.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.Date)
	pdf.SetModificationDate(doc.Date)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle("KalamKart Order Invoice", true)
	pdf.SetAuthor("KalamKart", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "KalamKart Order Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Order details
	customer := doc.CustomerName
	if customer == "" {
		customer = "N/A"
	}

	pdf.SetFont("Helvetica", "", 12)
	details := []string{
		"Order ID: " + doc.OrderID,
		"Date: " + doc.Date.Format("2006-01-02 15:04"),
		"Customer Name: " + customer,
		"Phone: " + doc.Phone,
		"Delivery Address: " + doc.DeliveryAddress,
	}
	for _, d := range details {
		pdf.MultiCell(0, lineHeight, tr(d), "", "L", false)
	}
	pdf.Ln(4)

	// Items
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, lineHeight+1, "Items:", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for i, item := range doc.Items {
		subtotal := utils.LineTotal(item.Price, item.Quantity)
		line := fmt.Sprintf("%d. %s x%d = Rs. %s", i+1, item.Name, item.Quantity, utils.FormatAmount(subtotal))
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
	pdf.Ln(6)

	// Totals
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, lineHeight+1, "Total Amount: Rs. "+utils.FormatAmount(doc.TotalAmount), "", 1, "R", false, 0, "")

	if doc.Discount > 0 && doc.CouponCode != "" {
		pdf.SetFont("Helvetica", "", 12)
		discount := fmt.Sprintf("Discount Applied (%s): -Rs. %s", doc.CouponCode, utils.FormatAmount(doc.Discount))
		pdf.CellFormat(0, lineHeight, tr(discount), "", 1, "R", false, 0, "")
	}

	// Footer
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 11)
	pdf.CellFormat(0, lineHeight, "Thank you for shopping with KalamKart!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", doc.OrderID, err)
	}
	return buf.Bytes(), nil
}
