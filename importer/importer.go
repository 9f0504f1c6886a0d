// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/order-lottery/pool"
)

// Column headers required in tabular imports.
const (
	ColumnPlatform = "平台"
	ColumnOrder    = "主订单编号"
)

var (
	ErrMissingColumns  = fmt.Errorf("文件需要包含'%s'和'%s'两列数据", ColumnPlatform, ColumnOrder)
	ErrUnsupportedFile = errors.New("只支持 CSV 和 XLSX 文件")
	ErrEmptySheet      = errors.New("文件中没有数据")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextResult is the outcome of parsing freeform text.
type TextResult struct {
	Records   []pool.Record
	Malformed int
}

// ParseText reads one "platform,order" pair per line, split at the first
// comma, both halves trimmed. Blank lines are skipped; lines without a
// comma are counted as malformed.
func ParseText(text string) TextResult {
	var res TextResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		platform, order, ok := strings.Cut(line, ",")
		if !ok {
			res.Malformed++
			continue
		}
		res.Records = append(res.Records, pool.Record{
			Platform:    strings.TrimSpace(platform),
			OrderNumber: strings.TrimSpace(order),
		})
	}
	return res
}

// ParseFile dispatches on the file extension to ParseCSV or ParseXLSX.
func ParseFile(name string, r io.Reader) ([]pool.Record, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	}
	return nil, ErrUnsupportedFile
}

// ParseCSV reads a UTF-8 CSV, with or without a byte-order mark.
func ParseCSV(r io.Reader) ([]pool.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(rows)
}

// ParseXLSX reads the first sheet of an XLSX workbook.
func ParseXLSX(r io.Reader) ([]pool.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// fromRows locates the platform and order columns in the header row and
// returns one record per following row. Short rows yield empty fields,
// which the pool import counts as errors.
func fromRows(rows [][]string) ([]pool.Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	platformCol, orderCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case ColumnPlatform:
			platformCol = i
		case ColumnOrder:
			orderCol = i
		}
	}
	if platformCol < 0 || orderCol < 0 {
		return nil, ErrMissingColumns
	}

	records := make([]pool.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, pool.Record{
			Platform:    cell(row, platformCol),
			OrderNumber: cell(row, orderCol),
		})
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
