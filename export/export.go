// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/order-lottery/ledger"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Sheet1"
)

// Header is the column row of every export.
var Header = []string{"订单号", "平台", "时间"}

// FileName builds "抽奖结果_YYYYMMDD_HHMMSS.<ext>" from t in loc.
func FileName(t time.Time, loc *time.Location, ext string) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("抽奖结果_%s.%s", t.Format("20060102_150405"), ext)
}

// CSV writes records as UTF-8 CSV prefixed with a byte-order mark so
// spreadsheet programs detect the encoding.
func CSV(w io.Writer, records []ledger.Record) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.OrderNumber, r.Platform, r.Time}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes records to a single-sheet workbook.
func XLSX(w io.Writer, records []ledger.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range Header {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cellName, h); err != nil {
			return err
		}
	}
	for i, r := range records {
		row := i + 2
		values := []string{r.OrderNumber, r.Platform, r.Time}
		for j, v := range values {
			cellName, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			// order numbers stay text so long digit strings keep their form
			if err := f.SetCellStr(sheetName, cellName, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}
