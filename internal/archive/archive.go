// Package archive extracts Google Takeout zip archives into a single flat
// directory so that media and sidecars from every part end up side by side.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	"takeoutfix/internal/fileutil"
	"takeoutfix/internal/logging"
)

// FlatDirName is the extraction directory created inside the output directory.
const FlatDirName = "TEMP_FLAT"

// Find returns the archives in dir whose names match pattern, sorted.
func Find(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("archive pattern %q: %w", pattern, err)
	}
	archives := matches[:0]
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
			archives = append(archives, match)
		}
	}
	slices.Sort(archives)
	return archives, nil
}

// Result summarizes an extraction.
type Result struct {
	Dir      string
	Archives int
	Files    int
	// Renamed counts entries written under a _<n> suffix because an earlier
	// entry already used the name.
	Renamed int
}

// Extractor flattens archives into one directory.
type Extractor struct {
	logger *slog.Logger
	// Progress, when set, is called after each archive is extracted.
	Progress func(done, total int)
}

// NewExtractor returns an Extractor logging through logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, "archive")}
}

// Extract writes every file entry of every archive into dest, dropping the
// entry's directories. Name collisions are resolved with fileutil.UniquePath.
func (e *Extractor) Extract(ctx context.Context, archives []string, dest string) (*Result, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction directory: %w", err)
	}
	result := &Result{Dir: dest}
	for i, archivePath := range archives {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.extractOne(ctx, archivePath, dest, result); err != nil {
			return result, err
		}
		result.Archives++
		if e.Progress != nil {
			e.Progress(i+1, len(archives))
		}
	}
	e.logger.Info("archives extracted",
		logging.String("dir", dest),
		logging.Int("archives", result.Archives),
		logging.Int("files", result.Files),
		logging.Int("renamed", result.Renamed),
	)
	return result, nil
}

func (e *Extractor) extractOne(ctx context.Context, archivePath, dest string, result *Result) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	e.logger.Debug("extracting archive", logging.String("archive", archivePath), logging.Int("entries", len(zr.File)))
	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Base(file.Name)
		if name == "." || name == "/" || name == ".." {
			continue
		}
		target := filepath.Join(dest, name)
		unique, err := fileutil.UniquePath(target)
		if err != nil {
			return err
		}
		if unique != target {
			result.Renamed++
		}
		if err := writeEntry(file, unique); err != nil {
			return fmt.Errorf("extract %s from %s: %w", file.Name, archivePath, err)
		}
		result.Files++
	}
	return nil
}

func writeEntry(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if modified := file.Modified; !modified.IsZero() {
		_ = os.Chtimes(target, modified, modified)
	}
	return nil
}
