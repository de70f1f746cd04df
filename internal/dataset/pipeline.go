package dataset

import (
	"fmt"

	"nftsets/internal/logging"
)

// Options are the tunables of one pipeline run.
type Options struct {
	UserCut int
	Holdout float64
	Seed    int64
	// Width overrides the broadcast width for scalar item tables; 0 means
	// the image embedding width.
	Width int
}

// Stats aggregates the per-stage diagnostics of a run.
type Stats struct {
	Filter       FilterStats `json:"filter"`
	Labels       LabelStats  `json:"labels"`
	Split        SplitStats  `json:"split"`
	DroppedUsers int         `json:"dropped_feature_users"`
}

// Result is everything one collection's run produces, ready for the
// artifact writers.
type Result struct {
	Collection  string
	Options     Options
	Rows        []Encoded
	Mapping     *Mapping
	Split       *Split
	Adjacency   Adjacency
	RankedValid []int
	RankedTest  []int
	Items       *AlignedItems
	Users       *AlignedUsers
	Stats       Stats
}

// Build runs the full pipeline over one collection's inputs. The stages
// run in fixed order and each consumes the previous one's output; nothing
// here touches the filesystem.
func Build(in *Inputs, opts Options) (*Result, error) {
	lg := logging.With().Str("collection", in.Collection).Logger()

	filtered, fstats := Filter(in.Transactions, in.Items, in.Users, opts.UserCut)
	lg.Info().
		Int("rows_in", fstats.RowsIn).
		Int("rows_with_features", fstats.RowsWithFeature).
		Int("rows_out", fstats.RowsOut).
		Int("users_out", fstats.UsersOut).
		Int("items_out", fstats.ItemsOut).
		Msg("threshold filter")
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no interactions survive filtering", ErrPrecondition)
	}

	labeled, lstats := Label(filtered)
	lg.Info().
		Int("positive", lstats.Positive).
		Int("negative", lstats.Negative).
		Msg("labels")

	mapping := BuildMapping(labeled)
	lg.Info().
		Int("num_items", mapping.NumItems).
		Int("num_users", mapping.NumUsers).
		Msg("index space")

	rows := mapping.Encode(labeled)

	split, sstats := SplitRows(rows, opts.Holdout, opts.Seed)
	lg.Info().
		Int("train", sstats.TrainRows).
		Int("valid", sstats.ValidRows).
		Int("test", sstats.TestRows).
		Int("train_only_users", sstats.TrainOnlyUser).
		Msg("split")
	if sstats.TrainOnlyUser > 0 {
		lg.Warn().
			Int("users", sstats.TrainOnlyUser).
			Msg("users with no held-out rows appear only in train")
	}

	adj := BuildAdjacency(split.Train)
	rankedValid := RankByPopularity(split.Valid)
	rankedTest := RankByPopularity(split.Test)

	items, err := AlignItems(in.Items, mapping, opts.Width)
	if err != nil {
		return nil, err
	}
	users, dropped, err := AlignUsers(in.Users, mapping)
	if err != nil {
		return nil, err
	}
	lg.Info().
		Int("width", items.Width).
		Int("dropped_feature_users", dropped).
		Msg("feature alignment")

	return &Result{
		Collection:  in.Collection,
		Options:     opts,
		Rows:        rows,
		Mapping:     mapping,
		Split:       split,
		Adjacency:   adj,
		RankedValid: rankedValid,
		RankedTest:  rankedTest,
		Items:       items,
		Users:       users,
		Stats: Stats{
			Filter:       fstats,
			Labels:       lstats,
			Split:        sstats,
			DroppedUsers: dropped,
		},
	}, nil
}
