package artifact

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"nftsets/internal/dataset"
)

// WriteSQLite loads the whole artifact set into a fresh SQLite database so
// the verify and server tools can query it without re-parsing the flat
// files. Any existing database at path is replaced.
func WriteSQLite(path string, res *dataset.Result, meta Meta) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return err
	}
	if err := insertMeta(db, meta); err != nil {
		return err
	}
	if err := insertInter(db, res.Split); err != nil {
		return err
	}
	if err := insertAdjacency(db, res.Adjacency); err != nil {
		return err
	}
	if err := insertRanked(db, "valid", res.RankedValid); err != nil {
		return err
	}
	if err := insertRanked(db, "test", res.RankedTest); err != nil {
		return err
	}
	if err := insertItemFeatures(db, res.Items); err != nil {
		return err
	}
	if err := insertUserFeatures(db, res.Users, res.Mapping.NumItems); err != nil {
		return err
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_inter_split ON inter(split)`,
		`CREATE INDEX IF NOT EXISTS idx_inter_user ON inter(user)`,
		`CREATE INDEX IF NOT EXISTS idx_adjacency_user ON adjacency(user)`,
		`CREATE INDEX IF NOT EXISTS idx_item_features_item ON item_features(item)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_split ON ranked_items(split)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`DROP TABLE IF EXISTS meta`,
		`CREATE TABLE meta (
			run_id TEXT, collection TEXT, num_items INTEGER, num_users INTEGER,
			seed INTEGER, user_cut INTEGER, holdout REAL, width INTEGER,
			train_rows INTEGER, valid_rows INTEGER, test_rows INTEGER,
			user_cols TEXT, created_at TEXT
		)`,
		`DROP TABLE IF EXISTS inter`,
		`CREATE TABLE inter (split TEXT, pos INTEGER, user INTEGER, item INTEGER, label INTEGER)`,
		`DROP TABLE IF EXISTS adjacency`,
		`CREATE TABLE adjacency (user INTEGER, pos INTEGER, item INTEGER)`,
		`DROP TABLE IF EXISTS ranked_items`,
		`CREATE TABLE ranked_items (split TEXT, rank INTEGER, item INTEGER)`,
		`DROP TABLE IF EXISTS item_features`,
		`CREATE TABLE item_features (item INTEGER, kind TEXT, vector TEXT)`,
		`DROP TABLE IF EXISTS user_features`,
		`CREATE TABLE user_features (user INTEGER, vector TEXT)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func insertMeta(db *sql.DB, m Meta) error {
	cols, err := json.Marshal(m.UserCols)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO meta (run_id, collection, num_items, num_users, seed, user_cut, holdout, width,
			train_rows, valid_rows, test_rows, user_cols, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.RunID, m.Collection, m.NumItems, m.NumUsers, m.Seed, m.UserCut, m.Holdout, m.Width,
		m.TrainRows, m.ValidRows, m.TestRows, string(cols), m.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func insertInter(db *sql.DB, s *dataset.Split) error {
	stmt, err := db.Prepare(`INSERT INTO inter (split, pos, user, item, label) VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, part := range []struct {
		name string
		rows []dataset.Encoded
	}{
		{"train", s.Train},
		{"valid", s.Valid},
		{"test", s.Test},
	} {
		for pos, r := range part.rows {
			if _, err := stmt.Exec(part.name, pos, r.User, r.Item, r.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertAdjacency(db *sql.DB, adj dataset.Adjacency) error {
	stmt, err := db.Prepare(`INSERT INTO adjacency (user, pos, item) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range adj.Users() {
		for pos, item := range adj[u] {
			if _, err := stmt.Exec(u, pos, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertRanked(db *sql.DB, split string, items []int) error {
	stmt, err := db.Prepare(`INSERT INTO ranked_items (split, rank, item) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for rank, item := range items {
		if _, err := stmt.Exec(split, rank, item); err != nil {
			return err
		}
	}
	return nil
}

func insertItemFeatures(db *sql.DB, items *dataset.AlignedItems) error {
	stmt, err := db.Prepare(`INSERT INTO item_features (item, kind, vector) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, part := range []struct {
		kind string
		rows [][]float64
	}{
		{"image", items.Image},
		{"text", items.Text},
		{"price", items.Price},
		{"transaction", items.Transaction},
	} {
		for item, vals := range part.rows {
			vec, err := json.Marshal(vals)
			if err != nil {
				return err
			}
			if _, err := stmt.Exec(item, part.kind, string(vec)); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertUserFeatures(db *sql.DB, users *dataset.AlignedUsers, numItems int) error {
	stmt, err := db.Prepare(`INSERT INTO user_features (user, vector) VALUES (?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, vals := range users.Rows {
		vec, err := json.Marshal(vals)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(numItems+i, string(vec)); err != nil {
			return err
		}
	}
	return nil
}

// OpenSQLite opens an existing artifact database read side.
func OpenSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return sql.Open("sqlite", path)
}

// ReadMetaSQLite loads the meta row.
func ReadMetaSQLite(db *sql.DB) (Meta, error) {
	var m Meta
	var cols, created string
	err := db.QueryRow(
		`SELECT run_id, collection, num_items, num_users, seed, user_cut, holdout, width,
			train_rows, valid_rows, test_rows, user_cols, created_at FROM meta`,
	).Scan(&m.RunID, &m.Collection, &m.NumItems, &m.NumUsers, &m.Seed, &m.UserCut, &m.Holdout, &m.Width,
		&m.TrainRows, &m.ValidRows, &m.TestRows, &cols, &created)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal([]byte(cols), &m.UserCols); err != nil {
		return m, err
	}
	m.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	return m, err
}

// TrainItems returns one user's train adjacency in stored order.
func TrainItems(db *sql.DB, user int) ([]int, error) {
	rows, err := db.Query(`SELECT item FROM adjacency WHERE user = ? ORDER BY pos`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]int, 0)
	for rows.Next() {
		var it int
		if err := rows.Scan(&it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ItemFeatures returns one item's feature vectors keyed by kind.
func ItemFeatures(db *sql.DB, item int) (map[string][]float64, error) {
	rows, err := db.Query(`SELECT kind, vector FROM item_features WHERE item = ?`, item)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]float64{}
	for rows.Next() {
		var kind, vec string
		if err := rows.Scan(&kind, &vec); err != nil {
			return nil, err
		}
		var vals []float64
		if err := json.Unmarshal([]byte(vec), &vals); err != nil {
			return nil, fmt.Errorf("item %d %s vector: %w", item, kind, err)
		}
		out[kind] = vals
	}
	return out, rows.Err()
}

// UserFeatures returns one user's normalized feature vector.
func UserFeatures(db *sql.DB, user int) ([]float64, error) {
	var vec string
	if err := db.QueryRow(`SELECT vector FROM user_features WHERE user = ?`, user).Scan(&vec); err != nil {
		return nil, err
	}
	var vals []float64
	if err := json.Unmarshal([]byte(vec), &vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// RankedItems returns a split's popularity ranking in rank order.
func RankedItems(db *sql.DB, split string) ([]int, error) {
	rows, err := db.Query(`SELECT item FROM ranked_items WHERE split = ? ORDER BY rank`, split)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]int, 0)
	for rows.Next() {
		var it int
		if err := rows.Scan(&it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SplitRowCount returns the stored row count of one split.
func SplitRowCount(db *sql.DB, split string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM inter WHERE split = ?`, split).Scan(&n)
	return n, err
}
