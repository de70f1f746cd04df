package dataset

import (
	"errors"
	"reflect"
	"testing"
)

func testMapping(items []int64, users []string) *Mapping {
	rows := make([]Interaction, 0, len(items)+len(users))
	for i, it := range items {
		rows = append(rows, Interaction{User: users[i%len(users)], Item: it, Price: 1})
	}
	for _, u := range users {
		rows = append(rows, Interaction{User: u, Item: items[0], Price: 1})
	}
	return BuildMapping(labeledRows(rows))
}

func TestAlignItemsReindexAndBroadcast(t *testing.T) {
	tables := testItemTables(4, 5, 6, 8)
	m := testMapping([]int64{5, 6, 8}, []string{"A", "B"})

	aligned, err := AlignItems(tables, m, 0)
	if err != nil {
		t.Fatalf("AlignItems: %v", err)
	}
	if aligned.Width != 4 {
		t.Fatalf("expected width 4 from image table, got %d", aligned.Width)
	}

	// Mapped id 0 is raw token 5; its image row starts at 5.0.
	if aligned.Image[0][0] != 5.0 {
		t.Errorf("image row 0 not token 5's row: %v", aligned.Image[0])
	}
	// Mapped id 2 is raw token 8.
	if aligned.Image[2][0] != 8.0 {
		t.Errorf("image row 2 not token 8's row: %v", aligned.Image[2])
	}

	// Scalars broadcast to width 4 with the scalar repeated.
	if len(aligned.Price[1]) != 4 {
		t.Fatalf("price row not broadcast: %v", aligned.Price[1])
	}
	want := []float64{3, 3, 3, 3} // token 6 scalar is 6/2
	if !reflect.DeepEqual(aligned.Price[1], want) {
		t.Errorf("expected broadcast %v, got %v", want, aligned.Price[1])
	}
}

func TestAlignItemsWidthOverride(t *testing.T) {
	tables := testItemTables(4, 5, 6)
	m := testMapping([]int64{5, 6}, []string{"A"})

	aligned, err := AlignItems(tables, m, 6)
	if err != nil {
		t.Fatalf("AlignItems: %v", err)
	}
	if aligned.Width != 6 {
		t.Fatalf("expected width 6, got %d", aligned.Width)
	}
	if len(aligned.Transaction[0]) != 6 {
		t.Errorf("scalar not broadcast to override width: %v", aligned.Transaction[0])
	}
	// Vector tables keep their own width.
	if len(aligned.Image[0]) != 4 {
		t.Errorf("image row width changed: %v", aligned.Image[0])
	}
}

func TestAlignItemsMissingKeyFatal(t *testing.T) {
	tables := testItemTables(4, 5, 6, 8)
	m := testMapping([]int64{5, 6, 8}, []string{"A", "B"})
	delete(tables.Text.Rows, 6)

	_, err := AlignItems(tables, m, 0)
	if err == nil {
		t.Fatal("expected consistency violation for missing key")
	}
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("expected consistency violation, got %v", err)
	}
}

func TestAlignUsersNormalizesAndDropsExtra(t *testing.T) {
	users := testUserTable("A", "B", "C", "zzz-not-in-cohort")
	m := testMapping([]int64{5, 6, 8}, []string{"A", "B", "C"})

	aligned, dropped, err := AlignUsers(users, m)
	if err != nil {
		t.Fatalf("AlignUsers: %v", err)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped address, got %d", dropped)
	}
	if len(aligned.Rows) != 3 {
		t.Fatalf("expected 3 cohort rows, got %d", len(aligned.Rows))
	}
	for i, row := range aligned.Rows {
		for c, v := range row {
			if v < 0 || v > 1 {
				t.Errorf("row %d col %d outside [0,1]: %v", i, c, v)
			}
		}
	}
	// Column extremes map to exactly 0 and 1.
	if aligned.Rows[0][0] != 0 {
		t.Errorf("min of tx_count should normalize to 0, got %v", aligned.Rows[0][0])
	}
	if aligned.Rows[2][0] != 1 {
		t.Errorf("max of tx_count should normalize to 1, got %v", aligned.Rows[2][0])
	}
}

func TestAlignUsersMissingCohortUserFatal(t *testing.T) {
	users := testUserTable("A")
	m := testMapping([]int64{5, 6}, []string{"A", "B"})

	_, _, err := AlignUsers(users, m)
	if err == nil {
		t.Fatal("expected consistency violation")
	}
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("expected consistency violation, got %v", err)
	}
}

func TestMinMaxNormalizeConstantColumn(t *testing.T) {
	rows := [][]float64{{5, 1}, {5, 2}, {5, 3}}
	minMaxNormalize(rows)
	for i, r := range rows {
		if r[0] != 0 {
			t.Errorf("row %d: constant column should normalize to 0, got %v", i, r[0])
		}
	}
	if rows[0][1] != 0 || rows[1][1] != 0.5 || rows[2][1] != 1 {
		t.Errorf("second column misnormalized: %v", rows)
	}
}

func TestAlignUsersDoesNotMutateInput(t *testing.T) {
	users := testUserTable("A", "B")
	m := testMapping([]int64{5}, []string{"A", "B"})
	before := users.Rows["A"][0]

	if _, _, err := AlignUsers(users, m); err != nil {
		t.Fatalf("AlignUsers: %v", err)
	}
	if users.Rows["A"][0] != before {
		t.Fatal("input table mutated by normalization")
	}
}
