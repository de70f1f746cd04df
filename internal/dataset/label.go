package dataset

// LabelStats summarizes the label distribution for the run report.
type LabelStats struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Boundary int `json:"boundary_rows"`
}

// Label assigns each row its price-movement label: 1 when the next
// transaction of the same item, in row order, has a strictly lower price;
// 0 otherwise. The last transaction of an item has no successor and gets 0.
//
// Upstream documentation described the positive class as a price increase,
// but the computation it shipped thresholds the negated forward difference,
// so 1 marks a drop. The computed convention is kept here; see
// TestLabelPriceDrop for the pinned scenario.
func Label(rows []Interaction) ([]Labeled, LabelStats) {
	out := make([]Labeled, len(rows))
	for i, r := range rows {
		out[i] = Labeled{Interaction: r}
	}

	groups := map[int64][]int{}
	for i, r := range rows {
		groups[r.Item] = append(groups[r.Item], i)
	}

	var stats LabelStats
	for _, idxs := range groups {
		for k := 0; k+1 < len(idxs); k++ {
			if rows[idxs[k+1]].Price < rows[idxs[k]].Price {
				out[idxs[k]].Label = 1
			}
		}
		stats.Boundary++
	}
	for _, r := range out {
		if r.Label == 1 {
			stats.Positive++
		} else {
			stats.Negative++
		}
	}
	return out, stats
}
