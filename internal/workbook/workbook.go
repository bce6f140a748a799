package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned by Read when a named sheet is absent.
var ErrSheetNotFound = errors.New("sheet not found")

// dateTimeFormat is the number format applied to time.Time cells.
const dateTimeFormat = "yyyy-mm-dd hh:mm:ss"

// Sheet is one worksheet. Rows holds the displayed text of every cell and
// Values the decoded cell: float64 for numbers, time.Time for date-formatted
// numbers, bool for booleans and string otherwise. Blank cells are "" in
// both grids, and every row has len(Columns) cells.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
	Values  [][]any
}

// SheetData is one worksheet to write. Cells may be nil, string, bool, any
// numeric kind or time.Time.
type SheetData struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Read opens the workbook at path and returns the named sheet, or every
// sheet in workbook order when sheet is empty. The first row of a sheet is
// its header.
func Read(path, sheet string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if sheet != "" {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, filepath.Base(path))
		}
		names = []string{sheet}
	}

	r := newCellReader(f)
	out := make([]Sheet, 0, len(names))
	for _, name := range names {
		s, err := r.sheet(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// cellReader decodes raw cell values using each cell's type and number
// format. Date-ness is cached per style.
type cellReader struct {
	f         *excelize.File
	date1904  bool
	dateStyle map[int]bool
}

func newCellReader(f *excelize.File) *cellReader {
	r := &cellReader{f: f, dateStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// sheet squares up ragged rows, names the header and drops blank rows.
func (r *cellReader) sheet(name string) (Sheet, error) {
	shown, err := r.f.GetRows(name)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	raw, err := r.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	s := Sheet{Name: name}
	height := max(len(shown), len(raw))
	if height == 0 {
		return s, nil
	}

	width := 0
	for i := 0; i < height; i++ {
		width = max(width, len(at(shown, i)), len(at(raw, i)))
	}
	s.Columns = HeaderNames(at(shown, 0), width)

	for i := 1; i < height; i++ {
		rawRow := at(raw, i)
		if blank(rawRow) && blank(at(shown, i)) {
			continue
		}
		text := make([]string, width)
		copy(text, at(shown, i))
		values := make([]any, width)
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(rawRow) {
				cell = rawRow[c]
			}
			v, err := r.value(name, c+1, i+1, cell)
			if err != nil {
				return Sheet{}, err
			}
			values[c] = v
		}
		s.Rows = append(s.Rows, text)
		s.Values = append(s.Values, values)
	}
	return s, nil
}

// value decodes the raw text of the cell at (col, row), both one-based.
func (r *cellReader) value(sheet string, col, row int, raw string) (any, error) {
	if raw == "" {
		return "", nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := r.f.GetCellType(sheet, axis)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s!%s: %w", sheet, axis, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		isDate, err := r.isDateCell(sheet, axis)
		if err != nil {
			return nil, err
		}
		if !isDate {
			return num, nil
		}
		t, err := excelize.ExcelDateToTime(num, r.date1904)
		if err != nil {
			return num, nil
		}
		return t.Round(time.Millisecond), nil
	default:
		return raw, nil
	}
}

func (r *cellReader) isDateCell(sheet, axis string) (bool, error) {
	id, err := r.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("failed to read style of %s!%s: %w", sheet, axis, err)
	}
	if isDate, ok := r.dateStyle[id]; ok {
		return isDate, nil
	}
	isDate := false
	if style, err := r.f.GetStyle(id); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = isDateNumFmt(style.NumFmt)
		}
	}
	r.dateStyle[id] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format ID renders a date
// or time.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom format code has date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		default:
			b.WriteRune(ch)
		}
	}
	plain := strings.ToLower(b.String())
	if strings.Contains(plain, "general") {
		return false
	}
	return strings.ContainsAny(plain, "ydhs")
}

func at(rows [][]string, i int) []string {
	if i < len(rows) {
		return rows[i]
	}
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// HeaderNames pads raw to width and makes every name unique. Blank names
// become "Unnamed: i" (zero-based) and repeats get ".1", ".2" suffixes.
func HeaderNames(raw []string, width int) []string {
	if width < len(raw) {
		width = len(raw)
	}
	out := make([]string, width)
	used := make(map[string]bool, width)
	suffix := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for used[name] {
			suffix[base]++
			name = base + "." + strconv.Itoa(suffix[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Write creates the workbook at path with one worksheet per entry, in
// order. An existing file is replaced.
func Write(path string, sheets []SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s: no sheets to write", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateTimeFormat)})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for i, sd := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sd.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sd.Name, err)
			}
		} else if _, err := f.NewSheet(sd.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sd.Name, err)
		}
		if err := writeSheet(f, sd, dateStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sd SheetData, dateStyle int) error {
	sw, err := f.NewStreamWriter(sd.Name)
	if err != nil {
		return fmt.Errorf("failed to stream sheet %s: %w", sd.Name, err)
	}

	header := make([]interface{}, len(sd.Header))
	for i, h := range sd.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sd.Name, err)
	}

	for r, row := range sd.Rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			if t, ok := v.(time.Time); ok {
				cells[c] = excelize.Cell{StyleID: dateStyle, Value: t}
				continue
			}
			cells[c] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sd.Name, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", sd.Name, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
