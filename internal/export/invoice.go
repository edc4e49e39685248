package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

const receiptWidthMM = 80.0

type pageSpec struct {
	size     fpdf.SizeType
	margin   float64
	title    float64 // title font size
	body     float64 // body font size
	line     float64 // row height
	colRatio [4]float64
}

func specFor(layout Layout) pageSpec {
	if layout == LayoutReceipt {
		return pageSpec{
			size:     fpdf.SizeType{Wd: receiptWidthMM, Ht: receiptHeight(0, 0)},
			margin:   4,
			title:    12,
			body:     8,
			line:     5,
			colRatio: [4]float64{0.44, 0.12, 0.22, 0.22},
		}
	}
	return pageSpec{
		size:     fpdf.SizeType{Wd: 210, Ht: 297},
		margin:   15,
		title:    18,
		body:     11,
		line:     8,
		colRatio: [4]float64{0.46, 0.14, 0.20, 0.20},
	}
}

// receiptHeight sizes a receipt so it prints as one strip: fixed header and totals,
// 4mm per wrapped detail row and 6mm per item.
func receiptHeight(items, detailRows int) float64 {
	return 86 + float64(detailRows)*4 + float64(items)*6
}

// cp1252Runes widens each byte of translated text to a rune, the form SplitText
// expects for the built-in fonts.
func cp1252Runes(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}

// Invoice renders a single order as a PDF bill.
func (e *Exporter) Invoice(o order.Order, layout Layout) (Document, error) {
	spec := specFor(layout)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           spec.size,
	})
	pdf.SetMargins(spec.margin, spec.margin, spec.margin)
	pdf.SetAutoPageBreak(true, spec.margin)
	pdf.SetTitle(fmt.Sprintf("%s Invoice %s", e.shop.Name, o.ID), true)
	pdf.SetCreator(e.shop.Name, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := spec.size.Wd - 2*spec.margin

	details := []string{
		"Order ID: " + o.ID,
		"Date: " + e.timestamp(o.CreatedAt),
		"Customer: " + o.Name,
		"Phone: " + o.Phone,
		"Address: " + o.Address,
		"Pincode: " + o.Pincode,
	}
	if o.Landmark != "" {
		details = append(details, "Landmark: "+o.Landmark)
	}
	for i := range details {
		details[i] = tr(details[i])
	}

	if layout == LayoutReceipt {
		pdf.SetFont("Helvetica", "", spec.body)
		rows := 0
		for _, d := range details {
			rows += max(1, len(pdf.SplitText(cp1252Runes(d), width)))
		}
		spec.size.Ht = receiptHeight(len(o.Items), rows)
	}
	pdf.AddPageFormat("P", spec.size)

	pdf.SetFont("Helvetica", "B", spec.title)
	pdf.CellFormat(width, spec.line+2, tr(e.shop.Name+" Invoice"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", spec.body)
	for _, d := range details {
		pdf.MultiCell(width, spec.line-1, d, "", "L", false)
	}
	pdf.Ln(2)

	cols := [4]float64{}
	for i, r := range spec.colRatio {
		cols[i] = width * r
	}

	pdf.SetFont("Helvetica", "B", spec.body)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Quantity", "Unit Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], spec.line, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", spec.body)
	for _, it := range o.Items {
		pdf.CellFormat(cols[0], spec.line, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], spec.line, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], spec.line, e.money(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], spec.line, e.money(it.LineTotal()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	labelW := cols[0] + cols[1] + cols[2]
	totals := [][2]string{
		{"Subtotal", e.money(o.Subtotal)},
		{"Delivery Charge", e.money(o.DeliveryCharge)},
	}
	for _, t := range totals {
		pdf.CellFormat(labelW, spec.line, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], spec.line, t[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", spec.body+1)
	pdf.CellFormat(labelW, spec.line, "Grand Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], spec.line, e.money(o.Total), "T", 1, "R", false, 0, "")

	if o.Status != order.StatusNew {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", spec.body)
		pdf.CellFormat(width, spec.line, "Status: "+string(o.Status), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render invoice %s: %w", o.ID, err)
	}

	return Document{
		Filename:    fmt.Sprintf("bill_order_%s.pdf", o.ID),
		ContentType: "application/pdf",
		Body:        buf.Bytes(),
	}, nil
}
