package artifact

import (
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"nftsets/internal/dataset"
)

// Meta identifies a run and records the parameters and shape every
// consumer needs before touching the data files.
type Meta struct {
	RunID      string    `json:"run_id"`
	Collection string    `json:"collection"`
	NumItems   int       `json:"num_items"`
	NumUsers   int       `json:"num_users"`
	Seed       int64     `json:"seed"`
	UserCut    int       `json:"user_cut"`
	Holdout    float64   `json:"holdout"`
	Width      int       `json:"width"`
	TrainRows  int       `json:"train_rows"`
	ValidRows  int       `json:"valid_rows"`
	TestRows   int       `json:"test_rows"`
	UserCols   []string  `json:"user_cols"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMeta stamps a fresh run id and collects the run's parameters.
func NewMeta(res *dataset.Result) Meta {
	return Meta{
		RunID:      uuid.NewString(),
		Collection: res.Collection,
		NumItems:   res.Mapping.NumItems,
		NumUsers:   res.Mapping.NumUsers,
		Seed:       res.Options.Seed,
		UserCut:    res.Options.UserCut,
		Holdout:    res.Options.Holdout,
		Width:      res.Items.Width,
		TrainRows:  len(res.Split.Train),
		ValidRows:  len(res.Split.Valid),
		TestRows:   len(res.Split.Test),
		UserCols:   res.Users.Cols,
		CreatedAt:  time.Now().UTC(),
	}
}

// Report carries the per-stage diagnostics of a run.
type Report struct {
	RunID      string        `json:"run_id"`
	Collection string        `json:"collection"`
	Stats      dataset.Stats `json:"stats"`
	CreatedAt  time.Time     `json:"created_at"`
}

func writeJSONFile(path string, v any) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSONFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// WriteMeta writes meta.json.
func WriteMeta(path string, m Meta) error { return writeJSONFile(path, m) }

// ReadMeta loads meta.json.
func ReadMeta(path string) (Meta, error) {
	var m Meta
	err := readJSONFile(path, &m)
	return m, err
}

// WriteReport writes report.json.
func WriteReport(path string, r Report) error { return writeJSONFile(path, r) }

// ReadReport loads report.json.
func ReadReport(path string) (Report, error) {
	var r Report
	err := readJSONFile(path, &r)
	return r, err
}

// WriteAdjacency writes the train adjacency as a JSON object keyed by the
// decimal user id.
func WriteAdjacency(path string, adj dataset.Adjacency) error {
	out := make(map[string][]int, len(adj))
	for u, items := range adj {
		out[strconv.Itoa(u)] = items
	}
	return writeJSONFile(path, out)
}

// ReadAdjacency loads an adjacency JSON file back into mapped id space.
func ReadAdjacency(path string) (dataset.Adjacency, error) {
	raw := map[string][]int{}
	if err := readJSONFile(path, &raw); err != nil {
		return nil, err
	}
	adj := make(dataset.Adjacency, len(raw))
	for k, items := range raw {
		u, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		adj[u] = items
	}
	return adj, nil
}

// WriteRanked writes a popularity-ranked item id list.
func WriteRanked(path string, items []int) error {
	if items == nil {
		items = []int{}
	}
	return writeJSONFile(path, items)
}

// ReadRanked loads a popularity-ranked item id list.
func ReadRanked(path string) ([]int, error) {
	var items []int
	err := readJSONFile(path, &items)
	return items, err
}
