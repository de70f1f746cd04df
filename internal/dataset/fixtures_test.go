package dataset

import "fmt"

// testItemTables builds the four item tables covering ids, vectors of the
// given width plus single-column scalars, every value derived from the id
// so tests can spot misrouted rows.
func testItemTables(width int, ids ...int64) *ItemTables {
	vector := func(name string) *ItemTable {
		cols := make([]string, width)
		for i := range cols {
			cols[i] = fmt.Sprintf("f%d", i)
		}
		t := &ItemTable{Name: name, Cols: cols, Rows: map[int64][]float64{}}
		for _, id := range ids {
			row := make([]float64, width)
			for i := range row {
				row[i] = float64(id) + float64(i)/10
			}
			t.Rows[id] = row
		}
		return t
	}
	scalar := func(name string) *ItemTable {
		t := &ItemTable{Name: name, Cols: []string{"value"}, Rows: map[int64][]float64{}}
		for _, id := range ids {
			t.Rows[id] = []float64{float64(id) / 2}
		}
		return t
	}
	return &ItemTables{
		Image:       vector("item_image"),
		Text:        vector("item_text"),
		Price:       scalar("item_price"),
		Transaction: scalar("item_transaction"),
	}
}

// testUserTable builds a three-column user table covering the addresses.
func testUserTable(addrs ...string) *UserTable {
	t := &UserTable{Cols: []string{"tx_count", "avg_price", "holding_period"}, Rows: map[string][]float64{}}
	for i, a := range addrs {
		t.Rows[a] = []float64{float64(i + 1), float64(10 * (i + 1)), float64(100 * (i + 1))}
	}
	return t
}

// rowsFor repeats interactions for a user over the given items at price 1.
func rowsFor(user string, items ...int64) []Interaction {
	out := make([]Interaction, len(items))
	for i, it := range items {
		out[i] = Interaction{User: user, Item: it, Price: 1}
	}
	return out
}
