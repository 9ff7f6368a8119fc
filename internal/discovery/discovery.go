// Package discovery walks a Takeout export and sorts its files into media
// and JSON sidecars.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"takeoutfix/internal/matching"
)

// Inventory lists the files found under a root. Media and Sidecars are sorted.
type Inventory struct {
	Root     string
	Media    []string
	Sidecars []string
	// Ignored counts regular files that are neither media nor sidecars.
	Ignored int
}

// Total returns the number of classified files.
func (inv *Inventory) Total() int {
	return len(inv.Media) + len(inv.Sidecars)
}

// Scan walks root recursively. Directories listed in exclude, and everything
// beneath them, are not visited. The walk stops when ctx is cancelled.
func Scan(ctx context.Context, root string, exclude ...string) (*Inventory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, dir := range exclude {
		if dir != "" {
			skip[filepath.Clean(dir)] = struct{}{}
		}
	}

	inv := &Inventory{Root: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if _, ok := skip[filepath.Clean(path)]; ok && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		switch name := d.Name(); {
		case matching.IsSidecarFile(name):
			inv.Sidecars = append(inv.Sidecars, path)
		case matching.IsMediaFile(name):
			inv.Media = append(inv.Media, path)
		default:
			inv.Ignored++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(inv.Media)
	slices.Sort(inv.Sidecars)
	return inv, nil
}

// ProcessedNames returns the names of the files directly inside dir, which a
// previous run into the same output directory produced. A missing dir yields
// no names.
func ProcessedNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list output directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
