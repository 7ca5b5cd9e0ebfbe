package budget

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FlowUploadRow is one parsed line of a budget or actuals sheet.
type FlowUploadRow struct {
	EntityID   string
	FiscalYear int
	MonthIndex int
	MonthName  string
	Amount     decimal.Decimal
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// NormalizeMonth resolves a month cell to its 1-based index and canonical
// name. Accepts full names, three-letter abbreviations and numerics 1-12.
func NormalizeMonth(s string) (int, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n, monthNames[n-1], true
		}
		return 0, "", false
	}
	low := strings.ToLower(s)
	for i, name := range monthNames {
		if low == strings.ToLower(name) || low == strings.ToLower(name[:3]) {
			return i + 1, name, true
		}
	}
	return 0, "", false
}

// ParseAmount reads a currency cell: strips "$", commas and spaces, and
// treats parenthesized values as negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

var headerAliases = map[string]string{
	"entity":      "entity_id",
	"entity_id":   "entity_id",
	"entity id":   "entity_id",
	"fiscal_year": "fiscal_year",
	"fiscal year": "fiscal_year",
	"year":        "fiscal_year",
	"fy":          "fiscal_year",
	"month":       "month",
	"period":      "month",
	"amount":      "amount",
	"value":       "amount",
}

// MapHeader resolves the header row to column positions for the four
// required fields. Unknown columns are ignored.
func MapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if field, ok := headerAliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	for _, field := range []string{"entity_id", "fiscal_year", "month", "amount"} {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("missing required column %q", field)
		}
	}
	return cols, nil
}

// ParseRows converts raw sheet rows (header first) into upload rows. Blank
// lines are skipped; any malformed cell fails the whole batch with a
// line-numbered error.
func ParseRows(raw [][]string) ([]FlowUploadRow, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}
	cols, err := MapHeader(raw[0])
	if err != nil {
		return nil, err
	}
	cell := func(row []string, field string) string {
		idx := cols[field]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	out := make([]FlowUploadRow, 0, len(raw)-1)
	for i, row := range raw[1:] {
		line := i + 2
		blank := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		entity := cell(row, "entity_id")
		if entity == "" {
			return nil, fmt.Errorf("line %d: missing entity", line)
		}
		fy, err := strconv.Atoi(cell(row, "fiscal_year"))
		if err != nil || fy < 2000 || fy > 2100 {
			return nil, fmt.Errorf("line %d: bad fiscal year %q", line, cell(row, "fiscal_year"))
		}
		idx, name, ok := NormalizeMonth(cell(row, "month"))
		if !ok {
			return nil, fmt.Errorf("line %d: bad month %q", line, cell(row, "month"))
		}
		amount, err := ParseAmount(cell(row, "amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		out = append(out, FlowUploadRow{
			EntityID:   entity,
			FiscalYear: fy,
			MonthIndex: idx,
			MonthName:  name,
			Amount:     amount,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("sheet has no data rows")
	}
	return out, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// readXLS handles legacy Excel. The reader only works with file paths, so
// the payload goes through a temp file first.
func readXLS(data []byte) ([][]string, error) {
	tmp, err := os.CreateTemp("", "budget-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	wb, err := xls.Open(tmp.Name(), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ReadSheet dispatches on the file extension.
func ReadSheet(filename string, data []byte) ([][]string, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return readCSV(bytes.NewReader(data))
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return readXLSX(data)
	case strings.HasSuffix(strings.ToLower(filename), ".xls"):
		return readXLS(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}
