package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ExportTimeLayout is the browser-style timestamp used as column headers in
// raw availability exports, e.g. "Sun Feb 01 2026 06:11:20 GMT-0500".
const ExportTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

// exportMetaColumns is the number of leading metadata columns in a raw
// export (plot name, metric, value prefix, value suffix).
const exportMetaColumns = 4

var zoneNameSuffix = regexp.MustCompile(`\s*\(.*\)\s*$`)

// ParseExportTime parses an export column header. A trailing parenthesised
// zone name, such as "(hora estándar de Colombia)", is ignored.
func ParseExportTime(s string) (time.Time, error) {
	s = strings.TrimSpace(zoneNameSuffix.ReplaceAllString(s, ""))
	t, err := time.Parse(ExportTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable export timestamp %q", s)
	}
	return t, nil
}

// ReadExport reads one raw wide-format export: the header row carries four
// metadata columns followed by one column per timestamp, and the first data
// row carries the counts. Empty cells are skipped.
func ReadExport(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read export header: %w", err)
	}
	values, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read export values: %w", err)
	}
	if len(header) <= exportMetaColumns {
		return nil, fmt.Errorf("export has no timestamp columns")
	}

	samples := make([]Sample, 0, len(header)-exportMetaColumns)
	for i := exportMetaColumns; i < len(header); i++ {
		if i >= len(values) || strings.TrimSpace(values[i]) == "" {
			continue
		}
		ts, err := ParseExportTime(header[i])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		value, err := ParseCount(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		samples = append(samples, Sample{Time: ts, Value: value})
	}
	return samples, nil
}
