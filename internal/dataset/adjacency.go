package dataset

import "sort"

// Adjacency maps each mapped user id to the ordered items of that user's
// train rows. Repeat purchases stay as duplicates; a graph consumer decides
// how to weigh them.
type Adjacency map[int][]int

// BuildAdjacency groups the train rows per user, preserving row order.
// Rebuilding from the same train rows yields the same structure.
func BuildAdjacency(train []Encoded) Adjacency {
	adj := make(Adjacency)
	for _, r := range train {
		adj[r.User] = append(adj[r.User], r.Item)
	}
	return adj
}

// Users returns the adjacency's user ids in ascending order.
func (a Adjacency) Users() []int {
	users := make([]int, 0, len(a))
	for u := range a {
		users = append(users, u)
	}
	sort.Ints(users)
	return users
}

// GroupByUser groups any split's rows per user in ascending user id order,
// preserving each user's row order. This is the layout of the grouped text
// artifacts.
func GroupByUser(rows []Encoded) ([]int, map[int][]int) {
	byUser := map[int][]int{}
	for _, r := range rows {
		byUser[r.User] = append(byUser[r.User], r.Item)
	}
	users := make([]int, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Ints(users)
	return users, byUser
}

// RankByPopularity returns the split's item ids ordered by descending
// occurrence count. Ties keep first-appearance order in the split's row
// sequence, which is deterministic because the split itself is.
func RankByPopularity(rows []Encoded) []int {
	counts := map[int]int{}
	order := make([]int, 0)
	for _, r := range rows {
		if counts[r.Item] == 0 {
			order = append(order, r.Item)
		}
		counts[r.Item]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return order
}
