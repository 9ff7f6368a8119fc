package reconcile_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/rwcarlsen/goexif/exif"

	"takeoutfix/internal/config"
	"takeoutfix/internal/ledger"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
	"takeoutfix/internal/organizer"
	"takeoutfix/internal/reconcile"
	"takeoutfix/internal/testsupport"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied map[string]time.Time
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{applied: map[string]time.Time{}}
}

func (a *recordingApplier) Apply(path string, t time.Time) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied[path] = t
	return false, nil
}

var taken = time.Date(2019, 7, 14, 9, 30, 0, 0, time.UTC)

// seedSource writes one exact pair, one media file without a sidecar and one
// sidecar without media.
func seedSource(t *testing.T, cfg *config.Config) {
	t.Helper()
	src := cfg.Paths.SourceDir
	testsupport.WriteFile(t, src, "Google Photos/Photos from 2019/IMG_0001.jpg", "jpeg-bytes")
	testsupport.WriteSidecar(t, src, "Google Photos/Photos from 2019/IMG_0001.jpg.json", taken)
	testsupport.WriteFile(t, src, "Google Photos/Photos from 2019/orphan.png", "png-bytes")
	testsupport.WriteSidecar(t, src, "Google Photos/Photos from 2019/lonely.mp4.json", taken)
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat %s: %v", path, err)
	}
	return false
}

func TestRunPlacesPairsAndUnmatchedMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedSource(t, cfg)
	store := testsupport.MustOpenLedger(t, cfg)
	applier := newRecordingApplier()

	runner := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithLedger(store),
		reconcile.WithTimestampApplier(applier),
	)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := ledger.Counts{Media: 2, Sidecars: 2, Matched: 1, UnmatchedMedia: 1, UnmatchedSidecars: 1}
	if summary.Counts != want {
		t.Fatalf("counts = %+v, want %+v", summary.Counts, want)
	}
	if got := summary.Passes[matching.PassStrictExact.String()]; got != 1 {
		t.Fatalf("strict-exact pairs = %d, want 1", got)
	}
	if summary.Copied != 1 || summary.CopiedFailed != 1 || summary.CopyErrors != 0 {
		t.Fatalf("copy stats = %d/%d/%d", summary.Copied, summary.CopiedFailed, summary.CopyErrors)
	}

	out := cfg.Paths.OutputDir
	for _, rel := range []string{
		"IMG_0001.jpg",
		"IMG_0001.jpg.json",
		filepath.Join("FAILED", "orphan.png"),
		organizer.UnmatchedMediaList,
		organizer.UnmatchedJSONList,
		organizer.PairsList,
	} {
		if !fileExists(t, filepath.Join(out, rel)) {
			t.Fatalf("expected %s in output", rel)
		}
	}
	if fileExists(t, filepath.Join(out, "lonely.mp4.json")) {
		t.Fatal("unmatched sidecar should not be copied")
	}

	applied, ok := applier.applied[filepath.Join(out, "IMG_0001.jpg")]
	if !ok {
		t.Fatalf("timestamp not applied, applied = %v", applier.applied)
	}
	if !applied.Equal(taken) {
		t.Fatalf("applied time = %v, want %v", applied, taken)
	}
	if summary.Enriched != 1 {
		t.Fatalf("enriched = %d, want 1", summary.Enriched)
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != ledger.StatusCompleted {
		t.Fatalf("run status = %s, want completed", run.Status)
	}
	if run.Counts != want {
		t.Fatalf("ledger counts = %+v, want %+v", run.Counts, want)
	}
	pairs, err := store.ListPairs(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("ListPairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].MediaDest != filepath.Join(out, "IMG_0001.jpg") {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestRunSkipsSidecarsProcessedEarlier(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSidecarCopies(false))
	seedSource(t, cfg)
	store := testsupport.MustOpenLedger(t, cfg)

	first, err := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithLedger(store),
		reconcile.WithTimestampApplier(newRecordingApplier()),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Counts.Matched != 1 {
		t.Fatalf("first run matched = %d, want 1", first.Counts.Matched)
	}

	second, err := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithLedger(store),
		reconcile.WithTimestampApplier(newRecordingApplier()),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Counts.Matched != 0 || second.Counts.Skipped != 1 {
		t.Fatalf("second run counts = %+v, want 0 matched and 1 skipped", second.Counts)
	}
	if second.Counts.UnmatchedMedia != 1 {
		t.Fatalf("second run unmatched media = %d, want 1", second.Counts.UnmatchedMedia)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedSource(t, cfg)
	applier := newRecordingApplier()

	summary, err := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithDryRun(true),
		reconcile.WithTimestampApplier(applier),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.DryRun || summary.Counts.Matched != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if fileExists(t, cfg.Paths.OutputDir) {
		t.Fatal("dry run created the output directory")
	}
	if len(applier.applied) != 0 {
		t.Fatalf("dry run applied timestamps: %v", applier.applied)
	}
	if len(summary.Lists) != 0 {
		t.Fatalf("dry run wrote lists: %v", summary.Lists)
	}
}

func TestRunExtractsArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archivePath := filepath.Join(cfg.Paths.SourceDir, "takeout-20240101T000000Z-001.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"Takeout/Google Photos/Trip/beach.jpg":      "jpeg-bytes",
		"Takeout/Google Photos/Trip/beach.jpg.json": `{"photoTakenTime":{"timestamp":"1563096600"}}`,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}

	summary, err := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithTimestampApplier(newRecordingApplier()),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Archives != 1 || summary.Extracted != 2 {
		t.Fatalf("archives = %d extracted = %d", summary.Archives, summary.Extracted)
	}
	if summary.Counts.Matched != 1 {
		t.Fatalf("matched = %d, want 1", summary.Counts.Matched)
	}
	if !fileExists(t, filepath.Join(cfg.Paths.OutputDir, "beach.jpg")) {
		t.Fatal("expected beach.jpg in output")
	}
	if fileExists(t, filepath.Join(cfg.Paths.OutputDir, "TEMP_FLAT")) {
		t.Fatal("extraction directory was not removed")
	}
}

func TestRunDerivesOutputDirInsideSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutOutputDir())
	seedSource(t, cfg)
	clock := func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }

	runner := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithClock(clock),
		reconcile.WithTimestampApplier(newRecordingApplier()),
	)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantDir := filepath.Join(cfg.Paths.SourceDir, "Output-20240102T030405")
	if summary.OutputDir != wantDir {
		t.Fatalf("output dir = %s, want %s", summary.OutputDir, wantDir)
	}

	// The second run must not discover the first run's copies.
	again, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Counts.Media != 2 {
		t.Fatalf("second run media = %d, want 2", again.Counts.Media)
	}
}

func TestRunNoMediaFailsLedgerRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteSidecar(t, cfg.Paths.SourceDir, "only.jpg.json", taken)
	store := testsupport.MustOpenLedger(t, cfg)

	summary, err := reconcile.NewRunner(cfg, logging.NewNop(), reconcile.WithLedger(store)).Run(context.Background())
	if !errors.Is(err, reconcile.ErrNoMedia) {
		t.Fatalf("Run error = %v, want ErrNoMedia", err)
	}
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != ledger.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("run = %+v, want failed with message", run)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedSource(t, cfg)
	testsupport.MkdirAll(t, cfg.Paths.OutputDir)

	held := flock.New(filepath.Join(cfg.Paths.OutputDir, reconcile.LockFileName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = reconcile.NewRunner(cfg, logging.NewNop()).Run(context.Background())
	if !errors.Is(err, reconcile.ErrLocked) {
		t.Fatalf("Run error = %v, want ErrLocked", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedSource(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reconcile.NewRunner(cfg, logging.NewNop()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestMatchDoesNotWrite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedSource(t, cfg)
	testsupport.WriteFile(t, cfg.Paths.SourceDir, "takeout-001.zip", "not-a-zip")

	report, err := reconcile.NewRunner(cfg, logging.NewNop()).Match(context.Background())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if report.Counts.Matched != 1 || report.Counts.UnmatchedMedia != 1 || report.Counts.UnmatchedSidecars != 1 {
		t.Fatalf("counts = %+v", report.Counts)
	}
	if len(report.Archives) != 1 {
		t.Fatalf("archives = %v, want one", report.Archives)
	}
	pair := report.Result.Pairs[0]
	if filepath.Base(pair.MediaPath) != "IMG_0001.jpg" || filepath.Base(pair.MetadataPath) != "IMG_0001.jpg.json" {
		t.Fatalf("pair = %+v", pair)
	}
	if fileExists(t, cfg.Paths.OutputDir) {
		t.Fatal("Match created the output directory")
	}
}

func TestRunWritesEXIFIntoCopies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	original := buf.String()
	src := cfg.Paths.SourceDir
	srcMedia := testsupport.WriteFile(t, src, "Google Photos/Trip/IMG_0009.jpg", original)
	testsupport.WriteSidecar(t, src, "Google Photos/Trip/IMG_0009.jpg.json", taken)

	summary, err := reconcile.NewRunner(cfg, logging.NewNop(),
		reconcile.WithTimestampApplier(newRecordingApplier()),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.EXIFWritten != 1 {
		t.Fatalf("exif written = %d, want 1", summary.EXIFWritten)
	}

	f, err := os.Open(filepath.Join(cfg.Paths.OutputDir, "IMG_0009.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil {
		t.Fatalf("decode copied exif: %v", err)
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		t.Fatalf("DateTimeOriginal: %v", err)
	}
	if got, _ := tag.StringVal(); got != "2019:07:14 09:30:00" {
		t.Fatalf("DateTimeOriginal = %q", got)
	}

	untouched, _ := os.ReadFile(srcMedia)
	if string(untouched) != original {
		t.Fatal("source media was modified")
	}
}
