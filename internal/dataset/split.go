package dataset

import (
	"math"
	"math/rand"
	"sort"
)

// Split is a disjoint partition of the interaction matrix. Train keeps the
// original row order; valid and test carry the pooled holdout rows in their
// shuffled order.
type Split struct {
	Train []Encoded
	Valid []Encoded
	Test  []Encoded
}

// SplitStats summarizes the partition for the run report.
type SplitStats struct {
	TrainRows     int `json:"train_rows"`
	ValidRows     int `json:"valid_rows"`
	TestRows      int `json:"test_rows"`
	HeldOutRows   int `json:"held_out_rows"`
	TrainOnlyUser int `json:"train_only_users"`
}

// SplitRows holds out floor(holdout*n) rows per user, chosen uniformly
// without replacement from the user's rows, then splits the pooled holdout
// 50/50 into valid and test. Users are visited in ascending mapped id order
// and all randomness comes from the seeded source, so a fixed seed fixes
// the partition exactly. Users with fewer rows than 1/holdout contribute
// nothing to the pool and appear only in train; truncation skews the
// realized holdout fraction below the nominal one and no rebalancing is
// applied.
func SplitRows(rows []Encoded, holdout float64, seed int64) (*Split, SplitStats) {
	byUser := map[int][]int{}
	for i, r := range rows {
		byUser[r.User] = append(byUser[r.User], i)
	}
	users := make([]int, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Ints(users)

	rng := rand.New(rand.NewSource(seed))
	held := make(map[int]bool, len(rows))
	pool := make([]int, 0, len(rows))
	var stats SplitStats

	for _, u := range users {
		idxs := byUser[u]
		k := int(math.Floor(holdout * float64(len(idxs))))
		if k == 0 {
			stats.TrainOnlyUser++
			continue
		}
		perm := rng.Perm(len(idxs))
		for _, p := range perm[:k] {
			held[idxs[p]] = true
			pool = append(pool, idxs[p])
		}
	}
	stats.HeldOutRows = len(pool)

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	half := len(pool) / 2

	s := &Split{
		Train: make([]Encoded, 0, len(rows)-len(pool)),
		Valid: make([]Encoded, 0, half),
		Test:  make([]Encoded, 0, len(pool)-half),
	}
	for i, r := range rows {
		if !held[i] {
			s.Train = append(s.Train, r)
		}
	}
	for _, i := range pool[:half] {
		s.Valid = append(s.Valid, rows[i])
	}
	for _, i := range pool[half:] {
		s.Test = append(s.Test, rows[i])
	}

	stats.TrainRows = len(s.Train)
	stats.ValidRows = len(s.Valid)
	stats.TestRows = len(s.Test)
	return s, stats
}
