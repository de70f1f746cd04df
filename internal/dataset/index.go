package dataset

import "sort"

// Mapping is the dense id space shared by items, users and every feature
// table. Items occupy [0, NumItems) in ascending raw token id order; users
// occupy [NumItems, NumItems+NumUsers) in ascending address order. The
// mapping is a pure function of the sorted unique id sequences, so
// identical filtered input always reproduces it.
type Mapping struct {
	NumItems int
	NumUsers int

	// ItemIDs[mapped] and UserIDs[mapped-NumItems] recover raw ids.
	ItemIDs []int64
	UserIDs []string

	items map[int64]int
	users map[string]int
}

// BuildMapping derives the id space from the labeled interaction rows.
func BuildMapping(rows []Labeled) *Mapping {
	itemSet := map[int64]struct{}{}
	userSet := map[string]struct{}{}
	for _, r := range rows {
		itemSet[r.Item] = struct{}{}
		userSet[r.User] = struct{}{}
	}

	itemIDs := make([]int64, 0, len(itemSet))
	for id := range itemSet {
		itemIDs = append(itemIDs, id)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	userIDs := make([]string, 0, len(userSet))
	for id := range userSet {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	m := &Mapping{
		NumItems: len(itemIDs),
		NumUsers: len(userIDs),
		ItemIDs:  itemIDs,
		UserIDs:  userIDs,
		items:    make(map[int64]int, len(itemIDs)),
		users:    make(map[string]int, len(userIDs)),
	}
	for i, id := range itemIDs {
		m.items[id] = i
	}
	for i, id := range userIDs {
		m.users[id] = m.NumItems + i
	}
	return m
}

// ItemIndex returns the mapped id for a raw token id.
func (m *Mapping) ItemIndex(id int64) (int, bool) {
	v, ok := m.items[id]
	return v, ok
}

// UserIndex returns the mapped id for a wallet address.
func (m *Mapping) UserIndex(addr string) (int, bool) {
	v, ok := m.users[addr]
	return v, ok
}

// Encode rewrites the labeled rows into mapped id space, preserving order.
// Every row's ids are present by construction since the mapping was built
// from the same rows.
func (m *Mapping) Encode(rows []Labeled) []Encoded {
	out := make([]Encoded, len(rows))
	for i, r := range rows {
		out[i] = Encoded{User: m.users[r.User], Item: m.items[r.Item], Label: r.Label}
	}
	return out
}
