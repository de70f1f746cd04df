package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"nftsets/internal/dataset"
)

// Table is a numeric CSV artifact keyed by its leading id column, loaded
// back for verification.
type Table struct {
	Header []string
	IDs    []int
	Rows   [][]float64
}

// ReadTableCSV loads an aligned feature table artifact.
func ReadTableCSV(path string) (*Table, error) {
	header, records, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: header, IDs: make([]int, 0, len(records)), Rows: make([][]float64, 0, len(records))}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%s row %d has %d fields, want %d", path, i+2, len(rec), len(header))
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad id %q", path, i+2, rec[0])
		}
		vals := make([]float64, len(rec)-1)
		for j, s := range rec[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad value %q", path, i+2, s)
			}
			vals[j] = v
		}
		t.IDs = append(t.IDs, id)
		t.Rows = append(t.Rows, vals)
	}
	return t, nil
}

// ReadInterCSV loads the interaction matrix artifact in row order.
func ReadInterCSV(path string) ([]dataset.Encoded, error) {
	header, records, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	if len(header) != 3 || header[0] != "user" || header[1] != "item" || header[2] != "label" {
		return nil, fmt.Errorf("%s: unexpected header %v", path, header)
	}

	rows := make([]dataset.Encoded, 0, len(records))
	for i, rec := range records {
		if len(rec) != 3 {
			return nil, fmt.Errorf("%s row %d has %d fields, want 3", path, i+2, len(rec))
		}
		var r dataset.Encoded
		for j, dst := range []*int{&r.User, &r.Item, &r.Label} {
			v, err := strconv.Atoi(rec[j])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad value %q", path, i+2, rec[j])
			}
			*dst = v
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func readCSVFile(path string) ([]string, [][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return header, records, nil
}
