package service

import (
	"encoding/csv"
	"io"
	"strconv"

	"go-stock-ledger/internal/model"
)

var purchaseOrderCSVHeader = []string{
	"Item No.", "Product", "Quantity", "FOC Qty", "Net Qty", "Unit Price", "Discount", "Total",
}

// WritePurchaseOrderCSV renders one row per line followed by a GRAND TOTAL
// row. Amounts are printed with two decimals.
func WritePurchaseOrderCSV(w io.Writer, po model.PurchaseOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(purchaseOrderCSVHeader); err != nil {
		return err
	}
	for i, line := range po.Lines {
		row := []string{
			strconv.Itoa(i + 1),
			line.Product,
			strconv.Itoa(line.Quantity),
			strconv.Itoa(line.FOC),
			strconv.Itoa(line.NetQuantity()),
			line.UnitPrice.StringFixed(2),
			line.Discount.StringFixed(2),
			line.Total().StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "", "", "", "", "", "GRAND TOTAL", model.SumLines(po.Lines).StringFixed(2)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
