package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	productsSheet = "Products"
	dailySheet    = "Daily"
)

// ExportSummaryXLSX writes a dashboard summary as a workbook with one sheet
// for the counters, one per-product table and one daily series.
func ExportSummaryXLSX(summary Summary, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Generated at", generatedAt.Format(time.RFC3339)},
		{"Total clicks", summary.TotalClicks},
		{"Clicks today", summary.ClicksToday},
		{"Clicks this week", summary.ClicksWeek},
		{"Top product", fmt.Sprintf("%s (%d)", summary.TopProduct.Name, summary.TopProduct.Total)},
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Product", "Total", "Today", "Last click"}}
	for _, st := range summary.PerProduct {
		last := "-"
		if st.LastClick != nil {
			last = st.LastClick.In(generatedAt.Location()).Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{st.Name, st.Total, st.Today, last})
	}
	if err := writeRows(f, productsSheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Day", "Clicks"}}
	for _, d := range summary.Daily {
		rows = append(rows, []interface{}{d.Day.Format("2006-01-02"), d.Count})
	}
	if err := writeRows(f, dailySheet, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
