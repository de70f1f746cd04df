// Command build-dataset runs the dataset construction pipeline for one or
// all NFT collections: raw transaction logs and feature tables in, the
// training artifact set out.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nftsets/internal/artifact"
	"nftsets/internal/config"
	"nftsets/internal/dataset"
	"nftsets/internal/logging"
)

var (
	configPath = flag.String("config", "", "Optional YAML config file")
	collection = flag.String("collection", "", "Collection to build: azuki, bayc, coolcats, doodles or all")
	dataDir    = flag.String("data-dir", "", "Directory holding the raw inputs")
	outDir     = flag.String("out-dir", "", "Directory receiving the artifact sets")
	userCut    = flag.Int("user-cut", 0, "Minimum interactions per user after feature filtering")
	holdout    = flag.Float64("holdout", 0, "Per-user fraction of rows held out of train")
	seed       = flag.Int64("seed", 0, "Split sampling seed")
	width      = flag.Int("width", 0, "Broadcast width for scalar item features (0 = image width)")
	failFast   = flag.Bool("fail-fast", false, "Abort an all-collections run at the first failure")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log-format", "", "Log format: console or json")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	opts := dataset.Options{
		UserCut: cfg.UserCut,
		Holdout: cfg.Holdout,
		Seed:    cfg.Seed,
		Width:   cfg.Width,
	}

	var firstErr error
	for _, col := range cfg.Targets() {
		if err := runCollection(cfg, col, opts); err != nil {
			logging.Err(err).Str("collection", col).Msg("build failed")
			if firstErr == nil {
				firstErr = err
			}
			if cfg.FailFast {
				break
			}
		}
	}
	if firstErr != nil {
		os.Exit(exitCode(firstErr))
	}
}

func runCollection(cfg *config.Config, col string, opts dataset.Options) error {
	start := time.Now()

	in, err := dataset.LoadInputs(cfg.DataDir, col)
	if err != nil {
		return err
	}
	res, err := dataset.Build(in, opts)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.OutDir, col)
	meta, err := artifact.WriteAll(dir, res)
	if err != nil {
		return err
	}

	logging.Info().
		Str("collection", col).
		Str("run_id", meta.RunID).
		Dur("elapsed", time.Since(start)).
		Msg("artifacts written")

	fmt.Printf("Collection: %s\n", col)
	fmt.Printf("Run:        %s\n", meta.RunID)
	fmt.Printf("Items:      %d\n", meta.NumItems)
	fmt.Printf("Users:      %d\n", meta.NumUsers)
	fmt.Printf("Rows:       %d train / %d valid / %d test\n", meta.TrainRows, meta.ValidRows, meta.TestRows)
	fmt.Printf("Out:        %s\n", dir)
	return nil
}

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "collection":
			cfg.Collection = *collection
		case "data-dir":
			cfg.DataDir = *dataDir
		case "out-dir":
			cfg.OutDir = *outDir
		case "user-cut":
			cfg.UserCut = *userCut
		case "holdout":
			cfg.Holdout = *holdout
		case "seed":
			cfg.Seed = *seed
		case "width":
			cfg.Width = *width
		case "fail-fast":
			cfg.FailFast = *failFast
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		}
	})
}

// Exit codes follow the error taxonomy: 2 for input contract violations,
// 3 for internal consistency violations, 1 for anything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, dataset.ErrPrecondition):
		return 2
	case errors.Is(err, dataset.ErrConsistency):
		return 3
	default:
		return 1
	}
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
