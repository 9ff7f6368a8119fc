package organizer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
)

// List file names written into the output directory.
const (
	UnmatchedMediaList = "unmatched_media.txt"
	UnmatchedJSONList  = "unmatched_jsons.txt"
	PairsList          = "pairs.tsv"
)

// WriteLists writes the unmatched media, unmatched sidecar and pair lists and
// returns their paths. Nothing is written in dry-run mode.
func (o *Organizer) WriteLists(result *matching.Result) ([]string, error) {
	if o.opts.DryRun || result == nil {
		return nil, nil
	}
	if err := o.ensureDir(o.opts.OutputDir); err != nil {
		return nil, err
	}

	pairLines := make([]string, 0, len(result.Pairs))
	for _, pair := range result.Pairs {
		pairLines = append(pairLines, pair.MediaPath+"\t"+pair.MetadataPath+"\t"+pair.Pass.String())
	}

	lists := []struct {
		name  string
		lines []string
	}{
		{UnmatchedMediaList, result.UnmatchedMedia},
		{UnmatchedJSONList, result.UnmatchedMetadata},
		{PairsList, pairLines},
	}
	written := make([]string, 0, len(lists))
	for _, list := range lists {
		path := filepath.Join(o.opts.OutputDir, list.name)
		if err := writeLines(path, list.lines); err != nil {
			return written, err
		}
		written = append(written, path)
		o.logger.Info("list written", logging.String("path", path), logging.Int("entries", len(list.lines)))
	}
	return written, nil
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = file.Close()
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}
