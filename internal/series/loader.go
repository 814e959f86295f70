package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVTimeLayout is the timestamp layout written by WriteCSV
const CSVTimeLayout = "2006-01-02 15:04:05-07:00"

var csvTimeLayouts = []string{
	CSVTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05-0700",
}

var (
	timeColumns  = []string{"time", "timestamp"}
	valueColumns = []string{"available_stores", "value", "count"}
)

// ErrMissingColumn is returned when a required CSV column is absent
var ErrMissingColumn = errors.New("missing column")

// LoadResult reports what LoadCSV read
type LoadResult struct {
	Samples []Sample
	Rows    int // data rows read
	Skipped int // rows with an empty value cell
}

// LoadCSV reads a two-column tabular source (timestamp, count). The header
// row names the columns; "time"/"timestamp" and
// "available_stores"/"value"/"count" are recognised. Rows with an empty count
// are skipped; anything else that fails to parse is an error.
func LoadCSV(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	timeIdx := columnIndex(header, timeColumns)
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: one of %v", ErrMissingColumn, timeColumns)
	}
	valueIdx := columnIndex(header, valueColumns)
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: one of %v", ErrMissingColumn, valueColumns)
	}

	result := &LoadResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if timeIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(timeIdx, valueIdx)+1, len(record))
		}
		result.Rows++

		raw := strings.TrimSpace(record[valueIdx])
		if raw == "" {
			result.Skipped++
			continue
		}
		ts, err := ParseTimestamp(record[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		value, err := ParseCount(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		result.Samples = append(result.Samples, Sample{Time: ts, Value: value})
	}

	return result, nil
}

// LoadCSVFile opens path and reads it with LoadCSV
func LoadCSVFile(path string) (*LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return LoadCSV(file)
}

// WriteCSV writes s in the format LoadCSV reads
func WriteCSV(w io.Writer, s Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time", "available_stores"}); err != nil {
		return err
	}
	for _, sm := range s {
		row := []string{sm.Time.Format(CSVTimeLayout), strconv.FormatInt(sm.Value, 10)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseTimestamp parses the timestamp formats found in availability exports
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := ParseExportTime(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ParseCount parses a non-negative integer count. Integral floats such as
// "1520.0" are accepted since spreadsheet exports often write them.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("%w: %d", ErrNegativeValue, v)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeValue, s)
	}
	return int64(f), nil
}

func columnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}
