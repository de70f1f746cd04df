package dataset

import "testing"

func TestFilterDropsUsersBelowCut(t *testing.T) {
	items := testItemTables(4, 1, 2, 3)
	users := testUserTable("alice", "bob")

	rows := append(rowsFor("alice", 1, 2, 3, 1, 2), rowsFor("bob", 1, 2, 3)...)
	got, stats := Filter(rows, items, users, 5)

	if len(got) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.User != "alice" {
			t.Fatalf("expected only alice to survive, got row for %q", r.User)
		}
	}
	if stats.UsersOut != 1 {
		t.Errorf("expected 1 surviving user, got %d", stats.UsersOut)
	}
	if stats.RowsIn != 8 || stats.RowsOut != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestFilterFeaturePresenceRunsBeforeCount(t *testing.T) {
	// Item 99 is absent from the feature tables. Alice has 6 raw rows but
	// only 4 feature-eligible ones, so the cut of 5 removes her entirely.
	items := testItemTables(4, 1, 2)
	users := testUserTable("alice")

	rows := []Interaction{
		{User: "alice", Item: 1, Price: 1},
		{User: "alice", Item: 99, Price: 1},
		{User: "alice", Item: 2, Price: 1},
		{User: "alice", Item: 99, Price: 1},
		{User: "alice", Item: 1, Price: 1},
		{User: "alice", Item: 2, Price: 1},
	}
	got, stats := Filter(rows, items, users, 5)

	if len(got) != 0 {
		t.Fatalf("expected no surviving rows, got %d", len(got))
	}
	if stats.RowsWithFeature != 4 {
		t.Errorf("expected 4 feature-eligible rows, got %d", stats.RowsWithFeature)
	}
}

func TestFilterDropsUsersWithoutFeatures(t *testing.T) {
	items := testItemTables(4, 1, 2)
	users := testUserTable("alice")

	rows := append(rowsFor("alice", 1, 2, 1, 2, 1), rowsFor("ghost", 1, 2, 1, 2, 1)...)
	got, _ := Filter(rows, items, users, 5)

	for _, r := range got {
		if r.User == "ghost" {
			t.Fatal("user without feature row must not survive")
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(got))
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	items := testItemTables(4, 1, 2, 3)
	users := testUserTable("alice")

	rows := []Interaction{
		{User: "alice", Item: 3, Price: 5},
		{User: "alice", Item: 1, Price: 4},
		{User: "alice", Item: 2, Price: 3},
		{User: "alice", Item: 3, Price: 2},
		{User: "alice", Item: 1, Price: 1},
	}
	got, _ := Filter(rows, items, users, 5)

	if len(got) != len(rows) {
		t.Fatalf("expected all rows kept, got %d", len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d reordered: got %+v, want %+v", i, got[i], rows[i])
		}
	}
}
