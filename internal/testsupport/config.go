package testsupport

import (
	"path/filepath"
	"testing"

	"takeoutfix/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose source, output and state directories live
// under a per-test temp directory. Source and state exist; output does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "takeout")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	MkdirAll(t, cfgVal.Paths.SourceDir)
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithoutOutputDir clears the output directory so runs derive a timestamped one.
func WithoutOutputDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = ""
	}
}

// WithArchivesDisabled turns off zip extraction.
func WithArchivesDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archives.Extract = false
	}
}

// WithSidecarCopies toggles copying sidecars next to their media.
func WithSidecarCopies(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.CopySidecars = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
