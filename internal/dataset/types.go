// Package dataset builds recommender training data from raw NFT marketplace
// transaction logs: threshold filtering, price-movement labels, a shared
// dense id space, a seeded per-user holdout split, the train adjacency and
// aligned side-feature tables.
package dataset

import "errors"

// Precondition violations mean the raw inputs break the input contract
// (missing columns, unparseable prices). Consistency violations mean the
// pipeline produced contradictory state (key-set mismatch after reindexing).
// Both abort the run; errors.Is distinguishes them at the CLI boundary.
var (
	ErrPrecondition = errors.New("precondition violation")
	ErrConsistency  = errors.New("consistency violation")
)

// Interaction is one parsed marketplace transaction. Row order within the
// same item carries the transaction sequence and must be preserved.
type Interaction struct {
	User  string // buyer wallet address
	Item  int64  // token id
	Price float64
}

// Labeled is an interaction with its price-movement label attached.
type Labeled struct {
	Interaction
	Label int
}

// Encoded is one row of the interaction matrix in mapped id space.
type Encoded struct {
	User  int // in [NumItems, NumItems+NumUsers)
	Item  int // in [0, NumItems)
	Label int
}
