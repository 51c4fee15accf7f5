package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var numericPattern = regexp.MustCompile(`^[.0-9]+$`)

// Field is one cell of a Row.
type Field struct {
	Key   string
	Value interface{}
}

// Row is an ordered record. Key order drives header order on write.
type Row []Field

// Get returns the value stored under key.
func (r Row) Get(key string) (interface{}, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the row as a map.
func (r Row) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for _, f := range r {
		out[f.Key] = f.Value
	}
	return out
}

// RowOf converts a map into a Row with keys in sorted order.
func RowOf(m map[string]interface{}) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(Row, 0, len(keys))
	for _, k := range keys {
		row = append(row, Field{Key: k, Value: m[k]})
	}
	return row
}

// CSVFile stores rows as comma separated values with a header line.
type CSVFile struct {
	*Adaptor
}

// CSV wraps the file as a CSV file, adding ".csv" when missing.
func (f *File) CSV() *CSVFile {
	return &CSVFile{Adaptor: newAdaptor(f, ExtCSV)}
}

// Write stores map rows. Without keys the header is the union of all row keys.
func (c *CSVFile) Write(ctx context.Context, rows []map[string]interface{}, keys ...string) error {
	records := make([]Row, len(rows))
	for i, m := range rows {
		records[i] = RowOf(m)
	}
	return c.WriteRecords(ctx, records, keys...)
}

// WriteRecords stores ordered rows. The header is keys, or the union of row
// keys in first-seen order. Missing cells are written empty.
func (c *CSVFile) WriteRecords(ctx context.Context, rows []Row, keys ...string) error {
	headers := headersOf(rows, keys)

	w, err := c.file.WriteStream()
	if err != nil {
		return err
	}

	err = c.encode(ctx, w, headers, rows)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	c.file.opts.observer.Observe(OpWrite, c.file.Size(), err)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Path(), err)
	}
	return nil
}

func (c *CSVFile) encode(ctx context.Context, w io.Writer, headers []string, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, h := range headers {
			record[i] = ""
			if v, ok := row.Get(h); ok {
				record[i] = c.formatCell(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func headersOf(rows []Row, keys []string) []string {
	seen := make(map[string]bool)
	var headers []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			headers = append(headers, k)
		}
	}

	if len(keys) > 0 {
		for _, k := range keys {
			add(k)
		}
		return headers
	}
	for _, row := range rows {
		for _, f := range row {
			add(f.Key)
		}
	}
	return headers
}

func (c *CSVFile) formatCell(v interface{}) string {
	switch s := c.snapshot(v).(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(data)
	default:
		return fmt.Sprint(s)
	}
}

// Read parses the stored rows as maps. A missing file yields no rows.
func (c *CSVFile) Read(ctx context.Context) ([]map[string]interface{}, error) {
	records, err := c.ReadRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(records))
	for i, r := range records {
		out[i] = r.Map()
	}
	return out, nil
}

// ReadRecords parses the stored rows in header order. The first line is the
// header; every cell is coerced with ParseCell.
func (c *CSVFile) ReadRecords(ctx context.Context) ([]Row, error) {
	rc, err := c.file.ReadStream()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.Path(), err)
	}

	rows := []Row{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", c.Path(), err)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			row[i] = Field{Key: h, Value: ParseCell(record[i])}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseCell coerces one CSV cell: "" is nil, true/false (any case) are
// booleans, digits with at most one decimal point are numbers, anything else
// stays text. A text cell reading "true" cannot be told apart from a boolean.
func ParseCell(val string) interface{} {
	switch strings.ToLower(val) {
	case "false":
		return false
	case "true":
		return true
	case "":
		return nil
	}
	if numericPattern.MatchString(val) && strings.Count(val, ".") <= 1 {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return val
}
