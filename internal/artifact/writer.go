package artifact

import (
	"path/filepath"

	"nftsets/internal/dataset"
)

// Artifact file names inside a collection's output directory.
const (
	FileInter           = "inter.csv"
	FileTrain           = "train.txt"
	FileValid           = "valid.txt"
	FileTest            = "test.txt"
	FileAdjacency       = "adjacency.json"
	FileIndicesValid    = "indices_valid.json"
	FileIndicesTest     = "indices_test.json"
	FileItemImage       = "item_image.csv"
	FileItemText        = "item_text.csv"
	FileItemPrice       = "item_price.csv"
	FileItemTransaction = "item_transaction.csv"
	FileUserFeatures    = "user_features.csv"
	FileMeta            = "meta.json"
	FileReport          = "report.json"
	FileSQLite          = "dataset.sqlite"
)

// WriteAll persists the complete artifact set for one run under dir and
// returns the stamped meta. Artifacts are write-once: a re-run replaces
// the whole set.
func WriteAll(dir string, res *dataset.Result) (Meta, error) {
	meta := NewMeta(res)

	if err := WriteInterCSV(filepath.Join(dir, FileInter), res.Rows); err != nil {
		return meta, err
	}
	for _, part := range []struct {
		name string
		rows []dataset.Encoded
	}{
		{FileTrain, res.Split.Train},
		{FileValid, res.Split.Valid},
		{FileTest, res.Split.Test},
	} {
		if err := WriteGroupedSplit(filepath.Join(dir, part.name), part.rows); err != nil {
			return meta, err
		}
	}
	if err := WriteAdjacency(filepath.Join(dir, FileAdjacency), res.Adjacency); err != nil {
		return meta, err
	}
	if err := WriteRanked(filepath.Join(dir, FileIndicesValid), res.RankedValid); err != nil {
		return meta, err
	}
	if err := WriteRanked(filepath.Join(dir, FileIndicesTest), res.RankedTest); err != nil {
		return meta, err
	}
	for _, part := range []struct {
		name string
		rows [][]float64
	}{
		{FileItemImage, res.Items.Image},
		{FileItemText, res.Items.Text},
		{FileItemPrice, res.Items.Price},
		{FileItemTransaction, res.Items.Transaction},
	} {
		if err := WriteItemTableCSV(filepath.Join(dir, part.name), part.rows); err != nil {
			return meta, err
		}
	}
	if err := WriteUserFeaturesCSV(filepath.Join(dir, FileUserFeatures), res.Users, res.Mapping.NumItems); err != nil {
		return meta, err
	}
	if err := WriteMeta(filepath.Join(dir, FileMeta), meta); err != nil {
		return meta, err
	}
	report := Report{RunID: meta.RunID, Collection: res.Collection, Stats: res.Stats, CreatedAt: meta.CreatedAt}
	if err := WriteReport(filepath.Join(dir, FileReport), report); err != nil {
		return meta, err
	}
	if err := WriteSQLite(filepath.Join(dir, FileSQLite), res, meta); err != nil {
		return meta, err
	}
	return meta, nil
}
