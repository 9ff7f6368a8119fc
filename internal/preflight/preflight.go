package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"takeoutfix/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// ErrFailed is wrapped by FirstFailure.
var ErrFailed = errors.New("preflight check failed")

// RunAll checks the source, state and output locations of cfg. outputDir is
// the resolved output directory, which need not exist yet.
func RunAll(cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckReadableDir("Source directory", cfg.Paths.SourceDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckCreatable("Output directory", outputDir),
	}
}

// FirstFailure returns an error describing the first failed result, or nil.
func FirstFailure(results []Result) error {
	for _, r := range results {
		if !r.Passed {
			return fmt.Errorf("%w: %s: %s", ErrFailed, r.Name, r.Detail)
		}
	}
	return nil
}

// CheckReadableDir verifies that path is a directory that can be listed.
func CheckReadableDir(name, path string) Result {
	if detail, ok := statDir(path); !ok {
		return Result{Name: name, Detail: detail}
	}
	if err := access(path, accessRead); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckDirectoryAccess verifies that path is a readable and writable directory.
func CheckDirectoryAccess(name, path string) Result {
	if detail, ok := statDir(path); !ok {
		return Result{Name: name, Detail: detail}
	}
	if err := access(path, accessReadWrite); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes when path is a writable directory, or when it does
// not exist and its nearest existing ancestor is writable.
func CheckCreatable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not set"}
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	case err == nil:
		return CheckDirectoryAccess(name, path)
	case !errors.Is(err, fs.ErrNotExist):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := filepath.Dir(path)
	for {
		if info, err := os.Stat(ancestor); err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, ancestor)}
			}
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := access(ancestor, accessReadWrite); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func statDir(path string) (string, bool) {
	if strings.TrimSpace(path) == "" {
		return "not set", false
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("%s (error: does not exist)", path), false
		}
		return fmt.Sprintf("%s (error: stat: %v)", path, err), false
	}
	if !info.IsDir() {
		return fmt.Sprintf("%s (error: is not a directory)", path), false
	}
	return "", true
}
