package section

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// LoadRows reads a section-assignment table, picking the format from the
// file extension: .json, .csv, .yaml/.yml or .xlsx.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer f.Close()
	return ReadRows(f, path)
}

// ReadRows decodes a table from r, choosing the format by filename.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".xlsx" {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open rows xlsx: %w", err)
		}
		defer f.Close()
		return rowsFromWorkbook(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	switch ext {
	case ".json":
		return ParseRowsJSON(data)
	case ".csv":
		return ReadRowsCSV(bytes.NewReader(data))
	case ".yaml", ".yml":
		return ParseRowsYAML(data)
	default:
		return nil, fmt.Errorf("unsupported rows format: %s", ext)
	}
}

// ParseRowsJSON validates data against the rows schema and decodes it.
func ParseRowsJSON(data []byte) ([]Row, error) {
	schema, err := rowSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rows do not match schema: %w", err)
	}

	items, _ := doc.([]any)
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		rows = append(rows, Row{
			Heading1: cell(m["heading1"]),
			Heading2: cell(m["heading2"]),
			Slides:   cell(m["slides"]),
		})
	}
	return rows, nil
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

// ParseRowsYAML decodes a YAML list of rows.
func ParseRowsYAML(data []byte) ([]Row, error) {
	var rows []Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows yaml: %w", err)
	}
	return rows, nil
}

// ReadRowsCSV reads a table whose header row names the columns.
func ReadRowsCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse rows csv: %w", err)
	}
	return rowsFromTable(records)
}

// ReadRowsXLSX reads the first sheet of a workbook.
func ReadRowsXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open rows xlsx: %w", err)
	}
	defer f.Close()
	return rowsFromWorkbook(f)
}

func rowsFromWorkbook(f *excelize.File) ([]Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("rows xlsx has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsFromTable(records)
}

// rowsFromTable maps a header row plus data rows onto Row values. Header
// names are matched loosely: "Heading 1", "heading1" and "heading_1" all
// select the first heading column.
func rowsFromTable(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, nil
	}

	col := map[string]int{"heading1": -1, "heading2": -1, "slides": -1}
	for i, h := range records[0] {
		name := headerName(h)
		if _, ok := col[name]; ok && col[name] < 0 {
			col[name] = i
		}
	}
	if col["slides"] < 0 {
		return nil, fmt.Errorf("rows table has no slides column")
	}
	if col["heading1"] < 0 && col["heading2"] < 0 {
		return nil, fmt.Errorf("rows table has no heading column")
	}

	at := func(rec []string, name string) string {
		i := col[name]
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			Heading1: at(rec, "heading1"),
			Heading2: at(rec, "heading2"),
			Slides:   at(rec, "slides"),
		})
	}
	return rows, nil
}

func headerName(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
	switch h {
	case "slide", "slidespec", "slidenumbers":
		return "slides"
	}
	return h
}
