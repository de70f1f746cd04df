package artifact

import (
	"testing"

	"nftsets/internal/dataset"
)

// buildTestResult runs the pipeline over a small fixed input set.
func buildTestResult(t *testing.T) *dataset.Result {
	t.Helper()

	vector := func(name string, ids ...int64) *dataset.ItemTable {
		tab := &dataset.ItemTable{Name: name, Cols: []string{"f0", "f1"}, Rows: map[int64][]float64{}}
		for _, id := range ids {
			tab.Rows[id] = []float64{float64(id), float64(id) / 10}
		}
		return tab
	}
	scalar := func(name string, ids ...int64) *dataset.ItemTable {
		tab := &dataset.ItemTable{Name: name, Cols: []string{"value"}, Rows: map[int64][]float64{}}
		for _, id := range ids {
			tab.Rows[id] = []float64{float64(id) * 2}
		}
		return tab
	}

	in := &dataset.Inputs{
		Collection: "azuki",
		Transactions: []dataset.Interaction{
			{User: "0xaaa", Item: 5, Price: 10},
			{User: "0xaaa", Item: 6, Price: 9},
			{User: "0xaaa", Item: 5, Price: 8},
			{User: "0xaaa", Item: 8, Price: 7},
			{User: "0xaaa", Item: 6, Price: 6},
			{User: "0xbbb", Item: 6, Price: 4},
			{User: "0xbbb", Item: 8, Price: 3},
			{User: "0xbbb", Item: 5, Price: 2},
			{User: "0xbbb", Item: 8, Price: 2},
			{User: "0xbbb", Item: 6, Price: 1},
		},
		Items: &dataset.ItemTables{
			Image:       vector("item_image", 5, 6, 8),
			Text:        vector("item_text", 5, 6, 8),
			Price:       scalar("item_price", 5, 6, 8),
			Transaction: scalar("item_transaction", 5, 6, 8),
		},
		Users: &dataset.UserTable{
			Cols: []string{"tx_count", "avg_price", "holding_period"},
			Rows: map[string][]float64{
				"0xaaa": {5, 8, 120},
				"0xbbb": {5, 2.4, 30},
			},
		},
	}

	res, err := dataset.Build(in, dataset.Options{UserCut: 5, Holdout: 0.4, Seed: 2022})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}
