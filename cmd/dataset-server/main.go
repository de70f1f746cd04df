// Command dataset-server exposes a built collection's SQLite artifact over
// HTTP for quick inspection: run metadata, per-user training items, item
// and user feature vectors, and the popularity rankings.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"nftsets/internal/artifact"
	"nftsets/internal/logging"
)

const defaultAddr = "127.0.0.1:18650"

var (
	dbPath    = flag.String("db", "", "Path to a collection's dataset.sqlite")
	addr      = flag.String("addr", defaultAddr, "HTTP listen address")
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat = flag.String("log-format", "console", "Log format (console or json)")
)

type userItemsPayload struct {
	User  int   `json:"user"`
	Items []int `json:"items"`
}

type itemFeaturesPayload struct {
	Item     int                  `json:"item"`
	Features map[string][]float64 `json:"features"`
}

type userFeaturesPayload struct {
	User     int       `json:"user"`
	Features []float64 `json:"features"`
}

type popularPayload struct {
	Split string `json:"split"`
	Items []int  `json:"items"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -db <path-to-dataset.sqlite> [-addr host:port]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: *logFormat})
	log := logging.Logger()

	if *dbPath == "" {
		log.Fatal().Msg("missing -db")
	}

	db, err := artifact.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open sqlite")
	}
	defer db.Close()

	meta, err := artifact.ReadMetaSQLite(db)
	if err != nil {
		log.Fatal().Err(err).Msg("load stored metadata")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/meta", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, meta)
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/users/")
		switch {
		case strings.HasSuffix(rest, "/items"):
			id, ok := parseID(strings.TrimSuffix(rest, "/items"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			serveUserItems(db, meta, w, id)
		case strings.HasSuffix(rest, "/features"):
			id, ok := parseID(strings.TrimSuffix(rest, "/features"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			serveUserFeatures(db, meta, w, id)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/items/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/items/")
		if !strings.HasSuffix(rest, "/features") {
			http.NotFound(w, r)
			return
		}
		id, ok := parseID(strings.TrimSuffix(rest, "/features"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		serveItemFeatures(db, meta, w, id)
	})
	mux.HandleFunc("/popular", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		servePopular(db, w, r)
	})

	log.Info().
		Str("addr", *addr).
		Str("collection", meta.Collection).
		Str("run", meta.RunID).
		Msg("dataset-server listening")
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func serveUserItems(db *sql.DB, meta artifact.Meta, w http.ResponseWriter, id int) {
	if id < meta.NumItems || id >= meta.NumItems+meta.NumUsers {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	items, err := artifact.TrainItems(db, id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		logging.Err(err).Int("user", id).Msg("train items query")
		return
	}
	if items == nil {
		items = []int{}
	}
	writeJSON(w, userItemsPayload{User: id, Items: items})
}

func serveUserFeatures(db *sql.DB, meta artifact.Meta, w http.ResponseWriter, id int) {
	if id < meta.NumItems || id >= meta.NumItems+meta.NumUsers {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	features, err := artifact.UserFeatures(db, id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		logging.Err(err).Int("user", id).Msg("user features query")
		return
	}
	writeJSON(w, userFeaturesPayload{User: id, Features: features})
}

func serveItemFeatures(db *sql.DB, meta artifact.Meta, w http.ResponseWriter, id int) {
	if id < 0 || id >= meta.NumItems {
		http.Error(w, "unknown item", http.StatusNotFound)
		return
	}
	features, err := artifact.ItemFeatures(db, id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		logging.Err(err).Int("item", id).Msg("item features query")
		return
	}
	writeJSON(w, itemFeaturesPayload{Item: id, Features: features})
}

func servePopular(db *sql.DB, w http.ResponseWriter, r *http.Request) {
	split := r.URL.Query().Get("split")
	if split == "" {
		split = "valid"
	}
	if split != "valid" && split != "test" {
		http.Error(w, "split must be valid or test", http.StatusBadRequest)
		return
	}
	items, err := artifact.RankedItems(db, split)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		logging.Err(err).Str("split", split).Msg("ranked items query")
		return
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		if limit < len(items) {
			items = items[:limit]
		}
	}
	if items == nil {
		items = []int{}
	}
	writeJSON(w, popularPayload{Split: split, Items: items})
}

func parseID(s string) (int, bool) {
	if s == "" || strings.Contains(s, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.Err(err).Msg("encode response")
	}
}
