package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

const historySheet = "Orders"

var historyHeader = []any{
	"Order ID", "Customer", "Phone", "Address", "Pincode", "Landmark",
	"Items", "Subtotal", "Delivery Charge", "Grand Total", "Timestamp", "Status",
}

// History renders every order as one spreadsheet row.
func (e *Exporter) History(orders []order.Order) (Document, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return Document{}, fmt.Errorf("name sheet: %w", err)
	}

	header := historyHeader
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return Document{}, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Document{}, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(historySheet, "A1", "L1", bold); err != nil {
		return Document{}, fmt.Errorf("apply header style: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return Document{}, fmt.Errorf("money style: %w", err)
	}

	for i, o := range orders {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return Document{}, err
		}
		values := []any{
			o.ID, o.Name, o.Phone, o.Address, o.Pincode, o.Landmark,
			ItemSummary(o.Items),
			o.Subtotal.InexactFloat64(),
			o.DeliveryCharge.InexactFloat64(),
			o.Total.InexactFloat64(),
			e.timestamp(o.CreatedAt),
			string(o.Status),
		}
		if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
			return Document{}, fmt.Errorf("write order %s: %w", o.ID, err)
		}
		from, _ := excelize.CoordinatesToCellName(8, row)
		to, _ := excelize.CoordinatesToCellName(10, row)
		if err := f.SetCellStyle(historySheet, from, to, money); err != nil {
			return Document{}, fmt.Errorf("style order %s: %w", o.ID, err)
		}
	}

	_ = f.SetColWidth(historySheet, "A", "A", 22)
	_ = f.SetColWidth(historySheet, "B", "F", 16)
	_ = f.SetColWidth(historySheet, "G", "G", 40)
	_ = f.SetColWidth(historySheet, "H", "J", 14)
	_ = f.SetColWidth(historySheet, "K", "K", 20)
	_ = f.SetPanes(historySheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Document{}, fmt.Errorf("write workbook: %w", err)
	}

	return Document{
		Filename:    "orders.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        buf.Bytes(),
	}, nil
}
