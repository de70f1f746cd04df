// Package artifact persists and reloads a pipeline run's outputs: CSV
// tables, grouped split text files, JSON structures and the SQLite store
// the consumer tools read.
package artifact

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nftsets/internal/dataset"
)

// writeRecord emits one CSV record with minimal quoting and a bare \n
// terminator, matching pandas to_csv output byte for byte.
func writeRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if strings.ContainsAny(field, ",\"\n\r") {
			escaped := strings.ReplaceAll(field, `"`, `""`)
			if _, err := io.WriteString(w, `"`+escaped+`"`); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, field); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// pythonFloatString renders a float the way Python's str() does, keeping a
// trailing .0 on integral values, so CSVs diff cleanly against the
// Python-side consumers.
func pythonFloatString(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s + ".0"
	}
	return s
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// WriteInterCSV writes the full interaction matrix as user,item,label
// triples in row order.
func WriteInterCSV(path string, rows []dataset.Encoded) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeRecord(f, []string{"user", "item", "label"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.User), strconv.Itoa(r.Item), strconv.Itoa(r.Label)}
		if err := writeRecord(f, rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteItemTableCSV writes one aligned item table: the mapped item id
// followed by width feature columns, one row per mapped id in order.
func WriteItemTableCSV(path string, rows [][]float64) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	header := make([]string, 1, width+1)
	header[0] = "item"
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("f%d", i))
	}
	if err := writeRecord(f, header); err != nil {
		return err
	}

	for item, vals := range rows {
		rec := make([]string, 1, len(vals)+1)
		rec[0] = strconv.Itoa(item)
		for _, v := range vals {
			rec = append(rec, pythonFloatString(v))
		}
		if err := writeRecord(f, rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteUserFeaturesCSV writes the aligned user table: the mapped user id
// followed by the normalized feature columns. Mapped user ids start at
// numItems.
func WriteUserFeaturesCSV(path string, users *dataset.AlignedUsers, numItems int) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := append([]string{"user"}, users.Cols...)
	if err := writeRecord(f, header); err != nil {
		return err
	}
	for i, vals := range users.Rows {
		rec := make([]string, 1, len(vals)+1)
		rec[0] = strconv.Itoa(numItems + i)
		for _, v := range vals {
			rec = append(rec, pythonFloatString(v))
		}
		if err := writeRecord(f, rec); err != nil {
			return err
		}
	}
	return nil
}
