package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/a-k-l-sdao/rholang-lsp/internal/config"
	"github.com/a-k-l-sdao/rholang-lsp/internal/index"
	"github.com/a-k-l-sdao/rholang-lsp/internal/provider"
)

// runScan brings the index at dbPath up to date with root and prints the
// syntax errors of every indexed file.
func runScan(cfg config.Config, root, dbPath string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := index.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	pool, err := provider.NewPool(cfg.Parser, cfg.IndexWorkers, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	stats, err := db.Update(ctx, pool, root, index.Options{
		Extensions: cfg.FileExtensions,
		Workers:    cfg.IndexWorkers,
	})
	if err != nil {
		return err
	}

	paths, err := db.Paths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		diags, err := db.Diagnostics(path)
		if err != nil {
			return err
		}
		for _, d := range diags {
			fmt.Printf("%s:%d:%d: %s\n", path, d.StartLine+1, d.StartColumn+1, d.Message)
		}
	}
	fmt.Printf("indexed %d, unchanged %d, removed %d\n", stats.Indexed, stats.Unchanged, stats.Removed)
	return nil
}
