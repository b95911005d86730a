// Package ingest discovers card files on disk for batch scans.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// WalkError is a path that could not be visited.
type WalkError struct {
	Path string
	Err  error
}

// CollectCardFiles walks root and returns matching files in lexical order.
// includeExts defaults to the card extensions in constants.AllowedExtensions.
// Unreadable entries are reported but do not stop the walk.
func CollectCardFiles(root string, includeExts []string, skipHidden bool) ([]string, DirStats, []WalkError, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, nil, errors.New("root path is required")
	}

	exts := constants.AllowedExtensions
	if len(includeExts) > 0 {
		exts = map[string]struct{}{}
		for _, e := range includeExts {
			e = constants.NormalizeExt(strings.TrimSpace(e))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var (
		files    []string
		stats    DirStats
		problems []WalkError
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			problems = append(problems, WalkError{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, stats, problems, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(files)
	return files, stats, problems, nil
}
