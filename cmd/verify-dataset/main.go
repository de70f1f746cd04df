// Command verify-dataset reloads a collection's persisted artifact set and
// re-checks the invariants the pipeline guarantees: id ranges, per-user
// split conservation, adjacency against train, popularity rankings,
// feature table alignment and the SQLite store. It writes a JSON report
// and exits nonzero when any check fails.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"nftsets/internal/artifact"
	"nftsets/internal/dataset"
)

type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type reportPayload struct {
	Status     string        `json:"status"`
	Collection string        `json:"collection"`
	RunID      string        `json:"run_id"`
	Passed     int           `json:"checks_passed"`
	Failed     int           `json:"checks_failed"`
	Checks     []checkResult `json:"checks"`
}

func main() {
	outDir := flag.String("out-dir", "out", "Directory holding the artifact sets")
	collection := flag.String("collection", "", "Collection to verify")
	outputJSON := flag.String("output-json", "", "Optional path to write the JSON report")
	flag.Parse()

	if *collection == "" {
		fmt.Fprintln(os.Stderr, "missing -collection")
		os.Exit(1)
	}

	report := verifyArtifacts(filepath.Join(*outDir, *collection), *collection)

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
		os.Exit(1)
	}
	if *outputJSON != "" {
		if err := os.MkdirAll(filepath.Dir(*outputJSON), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outputJSON, append(payload, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write report error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote JSON report: %s\n", *outputJSON)
	} else {
		fmt.Println(string(payload))
	}
	fmt.Printf("Status: %s (%d passed, %d failed)\n", report.Status, report.Passed, report.Failed)

	if report.Status != "pass" {
		os.Exit(1)
	}
}

func verifyArtifacts(dir, collection string) reportPayload {
	report := reportPayload{Collection: collection}
	add := func(name string, ok bool, detail string) {
		report.Checks = append(report.Checks, checkResult{Name: name, OK: ok, Detail: detail})
		if ok {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	meta, err := artifact.ReadMeta(filepath.Join(dir, artifact.FileMeta))
	if err != nil {
		add("meta-readable", false, err.Error())
		report.Status = "fail"
		return report
	}
	add("meta-readable", true, "")
	report.RunID = meta.RunID

	rows, err := artifact.ReadInterCSV(filepath.Join(dir, artifact.FileInter))
	if err != nil {
		add("inter-readable", false, err.Error())
		report.Status = "fail"
		return report
	}
	add("inter-readable", true, "")

	checkIDRanges(add, rows, meta)

	splits := map[string]map[int][]int{}
	splitOK := true
	for _, name := range []string{artifact.FileTrain, artifact.FileValid, artifact.FileTest} {
		_, byUser, err := artifact.ReadGroupedSplit(filepath.Join(dir, name))
		if err != nil {
			add("split-readable", false, fmt.Sprintf("%s: %v", name, err))
			splitOK = false
			break
		}
		splits[name] = byUser
	}
	if splitOK {
		add("split-readable", true, "")
		checkConservation(add, rows, splits)
		checkSplitCounts(add, meta, splits)
		checkTrainOrder(add, rows, splits[artifact.FileTrain])
		checkAdjacency(add, dir, splits[artifact.FileTrain])
		checkRanked(add, dir, artifact.FileIndicesValid, splits[artifact.FileValid])
		checkRanked(add, dir, artifact.FileIndicesTest, splits[artifact.FileTest])
	}

	checkItemTables(add, dir, meta)
	checkUserFeatures(add, dir, meta)
	checkSQLite(add, dir, meta)

	report.Status = "pass"
	if report.Failed > 0 {
		report.Status = "fail"
	}
	return report
}

func checkIDRanges(add func(string, bool, string), rows []dataset.Encoded, meta artifact.Meta) {
	for i, r := range rows {
		if r.Item < 0 || r.Item >= meta.NumItems {
			add("id-ranges", false, fmt.Sprintf("row %d: item %d outside [0,%d)", i, r.Item, meta.NumItems))
			return
		}
		if r.User < meta.NumItems || r.User >= meta.NumItems+meta.NumUsers {
			add("id-ranges", false, fmt.Sprintf("row %d: user %d outside [%d,%d)", i, r.User, meta.NumItems, meta.NumItems+meta.NumUsers))
			return
		}
		if r.Label != 0 && r.Label != 1 {
			add("id-ranges", false, fmt.Sprintf("row %d: label %d not binary", i, r.Label))
			return
		}
	}
	add("id-ranges", true, "")
}

func checkConservation(add func(string, bool, string), rows []dataset.Encoded, splits map[string]map[int][]int) {
	total := map[int]int{}
	for _, r := range rows {
		total[r.User]++
	}
	got := map[int]int{}
	for _, byUser := range splits {
		for u, items := range byUser {
			got[u] += len(items)
		}
	}
	for u, n := range total {
		if got[u] != n {
			add("split-conservation", false, fmt.Sprintf("user %d: %d rows in inter, %d across splits", u, n, got[u]))
			return
		}
	}
	for u := range got {
		if _, ok := total[u]; !ok {
			add("split-conservation", false, fmt.Sprintf("user %d in splits but not in inter", u))
			return
		}
	}
	add("split-conservation", true, "")
}

func checkSplitCounts(add func(string, bool, string), meta artifact.Meta, splits map[string]map[int][]int) {
	count := func(byUser map[int][]int) int {
		n := 0
		for _, items := range byUser {
			n += len(items)
		}
		return n
	}
	train := count(splits[artifact.FileTrain])
	valid := count(splits[artifact.FileValid])
	test := count(splits[artifact.FileTest])
	if train != meta.TrainRows || valid != meta.ValidRows || test != meta.TestRows {
		add("split-row-counts", false,
			fmt.Sprintf("got %d/%d/%d, meta says %d/%d/%d", train, valid, test, meta.TrainRows, meta.ValidRows, meta.TestRows))
		return
	}
	add("split-row-counts", true, "")
}

// checkTrainOrder asserts every user's train sequence is a subsequence of
// their inter sequence: holding out rows never reorders what remains.
func checkTrainOrder(add func(string, bool, string), rows []dataset.Encoded, train map[int][]int) {
	interByUser := map[int][]int{}
	for _, r := range rows {
		interByUser[r.User] = append(interByUser[r.User], r.Item)
	}
	for u, items := range train {
		if !isSubsequence(items, interByUser[u]) {
			add("train-order", false, fmt.Sprintf("user %d: train items %v not a subsequence of inter", u, items))
			return
		}
	}
	add("train-order", true, "")
}

func isSubsequence(sub, seq []int) bool {
	i := 0
	for _, v := range seq {
		if i < len(sub) && sub[i] == v {
			i++
		}
	}
	return i == len(sub)
}

func checkAdjacency(add func(string, bool, string), dir string, train map[int][]int) {
	adj, err := artifact.ReadAdjacency(filepath.Join(dir, artifact.FileAdjacency))
	if err != nil {
		add("adjacency-matches-train", false, err.Error())
		return
	}
	if len(adj) != len(train) {
		add("adjacency-matches-train", false, fmt.Sprintf("adjacency has %d users, train has %d", len(adj), len(train)))
		return
	}
	for u, items := range train {
		got, ok := adj[u]
		if !ok || !equalInts(got, items) {
			add("adjacency-matches-train", false, fmt.Sprintf("user %d: adjacency %v, train %v", u, got, items))
			return
		}
	}
	add("adjacency-matches-train", true, "")
}

// checkRanked asserts the persisted ranking covers exactly the split's
// items with non-increasing frequency.
func checkRanked(add func(string, bool, string), dir, name string, byUser map[int][]int) {
	checkName := "ranked-" + name
	ranked, err := artifact.ReadRanked(filepath.Join(dir, name))
	if err != nil {
		add(checkName, false, err.Error())
		return
	}
	counts := map[int]int{}
	for _, items := range byUser {
		for _, it := range items {
			counts[it]++
		}
	}
	if len(ranked) != len(counts) {
		add(checkName, false, fmt.Sprintf("ranking has %d items, split has %d distinct", len(ranked), len(counts)))
		return
	}
	seen := map[int]bool{}
	for i, it := range ranked {
		if counts[it] == 0 {
			add(checkName, false, fmt.Sprintf("ranked item %d not in split", it))
			return
		}
		if seen[it] {
			add(checkName, false, fmt.Sprintf("item %d ranked twice", it))
			return
		}
		seen[it] = true
		if i > 0 && counts[it] > counts[ranked[i-1]] {
			add(checkName, false, fmt.Sprintf("rank %d: count rises from %d to %d", i, counts[ranked[i-1]], counts[it]))
			return
		}
	}
	add(checkName, true, "")
}

func checkItemTables(add func(string, bool, string), dir string, meta artifact.Meta) {
	names := []string{artifact.FileItemImage, artifact.FileItemText, artifact.FileItemPrice, artifact.FileItemTransaction}
	var keySets [][]int
	for _, name := range names {
		tab, err := artifact.ReadTableCSV(filepath.Join(dir, name))
		if err != nil {
			add("item-tables-aligned", false, fmt.Sprintf("%s: %v", name, err))
			return
		}
		ids := append([]int(nil), tab.IDs...)
		sort.Ints(ids)
		for i, id := range ids {
			if id != i {
				add("item-tables-aligned", false, fmt.Sprintf("%s: ids not dense at %d", name, id))
				return
			}
		}
		if len(ids) != meta.NumItems {
			add("item-tables-aligned", false, fmt.Sprintf("%s: %d items, meta says %d", name, len(ids), meta.NumItems))
			return
		}
		keySets = append(keySets, ids)

		if name == artifact.FileItemPrice || name == artifact.FileItemTransaction {
			for _, row := range tab.Rows {
				if len(row) != meta.Width {
					add("item-tables-aligned", false, fmt.Sprintf("%s: row width %d, meta width %d", name, len(row), meta.Width))
					return
				}
			}
		}
	}
	for i := 1; i < len(keySets); i++ {
		if !equalInts(keySets[i], keySets[0]) {
			add("item-tables-aligned", false, fmt.Sprintf("%s and %s key sets differ", names[i], names[0]))
			return
		}
	}
	add("item-tables-aligned", true, "")
}

func checkUserFeatures(add func(string, bool, string), dir string, meta artifact.Meta) {
	tab, err := artifact.ReadTableCSV(filepath.Join(dir, artifact.FileUserFeatures))
	if err != nil {
		add("user-features", false, err.Error())
		return
	}
	if len(tab.IDs) != meta.NumUsers {
		add("user-features", false, fmt.Sprintf("%d users, meta says %d", len(tab.IDs), meta.NumUsers))
		return
	}
	ids := append([]int(nil), tab.IDs...)
	sort.Ints(ids)
	for i, id := range ids {
		if id != meta.NumItems+i {
			add("user-features", false, fmt.Sprintf("ids not dense from %d at position %d", meta.NumItems, i))
			return
		}
	}
	for i, row := range tab.Rows {
		for c, v := range row {
			if v < 0 || v > 1 {
				add("user-features", false, fmt.Sprintf("row %d col %d outside [0,1]: %v", i, c, v))
				return
			}
		}
	}
	add("user-features", true, "")
}

func checkSQLite(add func(string, bool, string), dir string, meta artifact.Meta) {
	db, err := artifact.OpenSQLite(filepath.Join(dir, artifact.FileSQLite))
	if err != nil {
		add("sqlite-consistent", false, err.Error())
		return
	}
	defer db.Close()

	stored, err := artifact.ReadMetaSQLite(db)
	if err != nil {
		add("sqlite-consistent", false, err.Error())
		return
	}
	if stored.RunID != meta.RunID {
		add("sqlite-consistent", false, fmt.Sprintf("sqlite run %s, meta.json run %s", stored.RunID, meta.RunID))
		return
	}
	for split, want := range map[string]int{"train": meta.TrainRows, "valid": meta.ValidRows, "test": meta.TestRows} {
		n, err := artifact.SplitRowCount(db, split)
		if err != nil {
			add("sqlite-consistent", false, err.Error())
			return
		}
		if n != want {
			add("sqlite-consistent", false, fmt.Sprintf("%s has %d rows in sqlite, meta says %d", split, n, want))
			return
		}
	}
	ranked, err := artifact.RankedItems(db, "valid")
	if err != nil {
		add("sqlite-consistent", false, err.Error())
		return
	}
	fileRanked, err := artifact.ReadRanked(filepath.Join(dir, artifact.FileIndicesValid))
	if err != nil {
		add("sqlite-consistent", false, err.Error())
		return
	}
	if !equalInts(ranked, fileRanked) {
		add("sqlite-consistent", false, "sqlite ranking differs from indices_valid.json")
		return
	}
	add("sqlite-consistent", true, "")
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
