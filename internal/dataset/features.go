package dataset

import "fmt"

// AlignedItems holds the four item feature tables rewritten into mapped id
// space: row i belongs to mapped item i. Scalar tables are broadcast to
// Width columns so every table presents embedding-shaped rows.
type AlignedItems struct {
	Width       int
	Image       [][]float64
	Text        [][]float64
	Price       [][]float64
	Transaction [][]float64
}

// AlignedUsers holds the user feature table rewritten into mapped id space
// and min-max normalized: row i belongs to mapped user NumItems+i.
type AlignedUsers struct {
	Cols []string
	Rows [][]float64
}

// AlignItems restricts each item table to the mapped cohort and reindexes
// it. The threshold filter only kept items present in all four tables, so
// a missing key here means the pipeline state went inconsistent and the
// run must abort rather than continue with a hole in the matrix. Scalars
// (single-column tables) are broadcast to width columns; width 0 means the
// image table's width.
func AlignItems(tables *ItemTables, m *Mapping, width int) (*AlignedItems, error) {
	if width == 0 {
		width = tables.Image.Width()
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: item_image has no feature columns", ErrPrecondition)
	}

	out := &AlignedItems{Width: width}
	for _, spec := range []struct {
		table *ItemTable
		dst   *[][]float64
	}{
		{tables.Image, &out.Image},
		{tables.Text, &out.Text},
		{tables.Price, &out.Price},
		{tables.Transaction, &out.Transaction},
	} {
		rows, err := reindexItemTable(spec.table, m, width)
		if err != nil {
			return nil, err
		}
		*spec.dst = rows
	}
	return out, nil
}

func reindexItemTable(t *ItemTable, m *Mapping, width int) ([][]float64, error) {
	rows := make([][]float64, m.NumItems)
	for mapped, raw := range m.ItemIDs {
		vals, ok := t.Rows[raw]
		if !ok {
			return nil, fmt.Errorf("%w: %s lost token id %d after filtering", ErrConsistency, t.Name, raw)
		}
		if len(vals) == 1 && width > 1 {
			b := make([]float64, width)
			for i := range b {
				b[i] = vals[0]
			}
			rows[mapped] = b
			continue
		}
		rows[mapped] = vals
	}
	return rows, nil
}

// AlignUsers restricts the user table to the mapped cohort, reindexes it
// and min-max normalizes each column over the cohort. Addresses outside
// the cohort are dropped; the table covering extra users is normal since
// it is shared across collections. A cohort user missing from the table is
// a consistency violation, the presence filter guaranteed it.
func AlignUsers(t *UserTable, m *Mapping) (*AlignedUsers, int, error) {
	rows := make([][]float64, m.NumUsers)
	for i, addr := range m.UserIDs {
		vals, ok := t.Rows[addr]
		if !ok {
			return nil, 0, fmt.Errorf("%w: user table lost address %s after filtering", ErrConsistency, addr)
		}
		row := make([]float64, len(vals))
		copy(row, vals)
		rows[i] = row
	}
	dropped := len(t.Rows) - m.NumUsers

	minMaxNormalize(rows)
	return &AlignedUsers{Cols: t.Cols, Rows: rows}, dropped, nil
}

// minMaxNormalize rescales each column to [0,1] in place. A constant
// column maps to 0 everywhere.
func minMaxNormalize(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	for c := 0; c < width; c++ {
		lo, hi := rows[0][c], rows[0][c]
		for _, r := range rows {
			if r[c] < lo {
				lo = r[c]
			}
			if r[c] > hi {
				hi = r[c]
			}
		}
		span := hi - lo
		for _, r := range rows {
			if span == 0 {
				r[c] = 0
				continue
			}
			r[c] = (r[c] - lo) / span
		}
	}
}
