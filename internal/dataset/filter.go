package dataset

// FilterStats records the cohort around each filtering stage for the run
// report.
type FilterStats struct {
	RowsIn          int `json:"rows_in"`
	RowsWithFeature int `json:"rows_with_features"`
	RowsOut         int `json:"rows_out"`
	UsersIn         int `json:"users_in"`
	UsersOut        int `json:"users_out"`
	ItemsIn         int `json:"items_in"`
	ItemsOut        int `json:"items_out"`
}

// Filter keeps the rows whose item appears in all four item feature tables
// and whose user appears in the user feature table, then drops every user
// whose remaining count is below userCut. The presence pass runs first, so
// the count only reflects feature-eligible rows: a user can fall below the
// threshold because of rows lost to missing features. Row order is
// preserved.
func Filter(rows []Interaction, items *ItemTables, users *UserTable, userCut int) ([]Interaction, FilterStats) {
	stats := FilterStats{RowsIn: len(rows)}
	usersIn := map[string]struct{}{}
	itemsIn := map[int64]struct{}{}
	for _, r := range rows {
		usersIn[r.User] = struct{}{}
		itemsIn[r.Item] = struct{}{}
	}
	stats.UsersIn = len(usersIn)
	stats.ItemsIn = len(itemsIn)

	eligible := make([]Interaction, 0, len(rows))
	counts := map[string]int{}
	for _, r := range rows {
		if !items.HasAll(r.Item) || !users.Has(r.User) {
			continue
		}
		eligible = append(eligible, r)
		counts[r.User]++
	}
	stats.RowsWithFeature = len(eligible)

	out := make([]Interaction, 0, len(eligible))
	usersOut := map[string]struct{}{}
	itemsOut := map[int64]struct{}{}
	for _, r := range eligible {
		if counts[r.User] < userCut {
			continue
		}
		out = append(out, r)
		usersOut[r.User] = struct{}{}
		itemsOut[r.Item] = struct{}{}
	}
	stats.RowsOut = len(out)
	stats.UsersOut = len(usersOut)
	stats.ItemsOut = len(itemsOut)
	return out, stats
}
