// scanner is used to scan a directory for Rholang sources.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Scan walks the entire subtree under root. Any file or directory whose name
// begins with "." is skipped entirely, as is every file whose extension is
// not in exts. For each remaining file skip is consulted, and if it returns
// false the file is read and callback(path, contents) runs on one of at most
// workers goroutines. Scan returns once all callbacks have completed, with
// the first error any of them returned.
func Scan(
	ctx context.Context,
	root string,
	exts []string,
	workers int,
	skip func(path string, info fs.FileInfo) bool,
	callback func(path string, document []byte) error,
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	log.Printf("scanner: starting WalkDir at %q", root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Println("scanner: walk error:", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if skip != nil && skip(path, info) {
			return nil
		}

		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Println("scanner: read error:", path, err)
				return nil
			}
			if err := callback(path, data); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
		return nil
	})
	if werr := g.Wait(); werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("scanner: walk failed: %w", err)
	}
	return nil
}
