package importer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// parseCSV reads the whole file into a header row plus data rows. Blank lines
// are dropped, ragged rows are tolerated (cells are fetched defensively at
// commit time), and quoting errors fail the upload.
func parseCSV(r io.Reader) (RawData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return RawData{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(records) == 0 {
		return RawData{}, fmt.Errorf("%w: file is empty", ErrParse)
	}

	return RawData{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

// cell returns the trimmed-later value at idx, or "" when the row is shorter
// than the header set or the column is unmapped (idx < 0).
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// headerIndex returns the position of name in headers, or -1.
func headerIndex(headers []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
