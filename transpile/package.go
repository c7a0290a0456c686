package transpile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyverse/pydown/internal/types"
)

// BuildOutputDir is where packaged build trees land, relative to the
// working directory.
const BuildOutputDir = "build/pydown_out"

// skippedDirs are never copied into a build tree: previous build output,
// distribution artifacts and caches.
var skippedDirs = map[string]bool{
	"build":       true,
	"dist":        true,
	"__pycache__": true,
}

// InitBuildDir copies a source tree into the build output directory and
// returns the copy's path. The source path must be relative so the output
// mirrors the package layout; a prior copy is replaced outright.
func InitBuildDir(srcDir string) (string, error) {
	if filepath.IsAbs(srcDir) {
		return "", &types.ConfigurationError{Reason: fmt.Sprintf(
			"package dir must be a relative path, got %q", srcDir,
		)}
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("error accessing %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", srcDir)
	}

	outDir := filepath.Join(BuildOutputDir, srcDir)
	if err := os.RemoveAll(outDir); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", outDir, err)
	}
	if err := copyTree(srcDir, outDir); err != nil {
		return "", err
	}
	return outDir, nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			if rel != "." && skippedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0o755)
		}
		if strings.HasSuffix(path, ".pyc") {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
