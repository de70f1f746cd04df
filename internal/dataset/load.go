package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ItemTable is one per-item side-feature table keyed by raw token id.
type ItemTable struct {
	Name string
	Cols []string // value column names in file order
	Rows map[int64][]float64
}

// Has reports whether the table carries features for the given token id.
func (t *ItemTable) Has(id int64) bool {
	_, ok := t.Rows[id]
	return ok
}

// Width returns the number of value columns.
func (t *ItemTable) Width() int { return len(t.Cols) }

// ItemTables bundles the four per-item feature tables a collection ships.
type ItemTables struct {
	Image       *ItemTable
	Text        *ItemTable
	Price       *ItemTable
	Transaction *ItemTable
}

// All returns the tables in canonical order.
func (ts *ItemTables) All() []*ItemTable {
	return []*ItemTable{ts.Image, ts.Text, ts.Price, ts.Transaction}
}

// HasAll reports whether every table carries the given token id.
func (ts *ItemTables) HasAll(id int64) bool {
	for _, t := range ts.All() {
		if !t.Has(id) {
			return false
		}
	}
	return true
}

// UserTable is the per-user side-feature table keyed by wallet address.
type UserTable struct {
	Cols []string
	Rows map[string][]float64
}

// Has reports whether the table carries features for the given address.
func (t *UserTable) Has(addr string) bool {
	_, ok := t.Rows[addr]
	return ok
}

// Inputs is one collection's full raw input set.
type Inputs struct {
	Collection   string
	Transactions []Interaction
	Items        *ItemTables
	Users        *UserTable
}

// LoadInputs reads a collection's raw files from dataDir. The user feature
// table lives beside the collection directories and is shared by all of
// them.
func LoadInputs(dataDir, collection string) (*Inputs, error) {
	dir := filepath.Join(dataDir, collection)

	tx, err := LoadTransactions(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}

	items := &ItemTables{}
	for _, spec := range []struct {
		name string
		dst  **ItemTable
	}{
		{"item_image", &items.Image},
		{"item_text", &items.Text},
		{"item_price", &items.Price},
		{"item_transaction", &items.Transaction},
	} {
		t, err := LoadItemTable(filepath.Join(dir, spec.name+".csv"), spec.name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", collection, err)
		}
		*spec.dst = t
	}

	users, err := LoadUserTable(filepath.Join(dataDir, "user_features.csv"))
	if err != nil {
		return nil, err
	}

	return &Inputs{Collection: collection, Transactions: tx, Items: items, Users: users}, nil
}

// LoadTransactions reads the buyer,token_id,price log. Row order is the
// transaction order and is preserved exactly.
func LoadTransactions(path string) ([]Interaction, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idx, err := columnIndex(path, header, "buyer", "token_id", "price")
	if err != nil {
		return nil, err
	}

	out := make([]Interaction, 0, len(records))
	for i, rec := range records {
		if len(rec) < len(header) {
			return nil, fmt.Errorf("%w: %s row %d has %d fields, want %d", ErrPrecondition, path, i+2, len(rec), len(header))
		}
		user := rec[idx["buyer"]]
		if user == "" {
			return nil, fmt.Errorf("%w: %s row %d has empty buyer", ErrPrecondition, path, i+2)
		}
		item, err := strconv.ParseInt(rec[idx["token_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d token_id %q", ErrPrecondition, path, i+2, rec[idx["token_id"]])
		}
		price, err := ParsePrice(rec[idx["price"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, Interaction{User: user, Item: item, Price: price})
	}
	return out, nil
}

// LoadItemTable reads a token_id keyed feature table. Every non-key column
// is a numeric feature.
func LoadItemTable(path, name string) (*ItemTable, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if _, err := columnIndex(path, header, "token_id"); err != nil {
		return nil, err
	}
	if header[0] != "token_id" {
		return nil, fmt.Errorf("%w: %s must lead with token_id, got %q", ErrPrecondition, path, header[0])
	}

	t := &ItemTable{Name: name, Cols: header[1:], Rows: make(map[int64][]float64, len(records))}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: %s row %d has %d fields, want %d", ErrPrecondition, path, i+2, len(rec), len(header))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d token_id %q", ErrPrecondition, path, i+2, rec[0])
		}
		vals, err := parseFloats(path, i+2, rec[1:])
		if err != nil {
			return nil, err
		}
		t.Rows[id] = vals
	}
	return t, nil
}

// LoadUserTable reads the address keyed user feature table. It may cover a
// superset of the collection's buyers.
func LoadUserTable(path string) (*UserTable, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if _, err := columnIndex(path, header, "address"); err != nil {
		return nil, err
	}
	if header[0] != "address" {
		return nil, fmt.Errorf("%w: %s must lead with address, got %q", ErrPrecondition, path, header[0])
	}

	t := &UserTable{Cols: header[1:], Rows: make(map[string][]float64, len(records))}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: %s row %d has %d fields, want %d", ErrPrecondition, path, i+2, len(rec), len(header))
		}
		if rec[0] == "" {
			return nil, fmt.Errorf("%w: %s row %d has empty address", ErrPrecondition, path, i+2)
		}
		vals, err := parseFloats(path, i+2, rec[1:])
		if err != nil {
			return nil, err
		}
		t.Rows[rec[0]] = vals
	}
	return t, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%w: %s is empty", ErrPrecondition, path)
		}
		return nil, nil, err
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

func columnIndex(path string, header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %q", ErrPrecondition, path, col)
		}
	}
	return idx, nil
}

func parseFloats(path string, line int, fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d value %q is not numeric", ErrPrecondition, path, line, s)
		}
		out[i] = f
	}
	return out, nil
}
