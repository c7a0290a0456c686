// Package transpile is the batch driver: it loads configuration, walks
// build trees for serialized syntax-tree files, and runs each one through
// the engine. Per-file work is independent, so directories are processed
// by a bounded worker pool.
package transpile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pyverse/pydown/internal"
	"github.com/pyverse/pydown/internal/astcodec"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// Config is the on-disk configuration (.pydown.yaml).
type Config struct {
	Name          string `yaml:"name"`
	TargetVersion string `yaml:"target_version"`
	Force         bool   `yaml:"force"`
	Fixers        string `yaml:"fixers"`
	Checkers      string `yaml:"checkers"`
	CacheDir      string `yaml:"cache_dir"`
}

// DefaultConfig targets 2.7, the widest-deployed legacy runtime.
func DefaultConfig() Config {
	return Config{
		Name:          "pydown",
		TargetVersion: "2.7",
		CacheDir:      filepath.Join(os.TempDir(), ".pydown_cache"),
	}
}

// LoadConfig reads a yaml config file; an empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}
	if config.CacheDir == "" {
		config.CacheDir = DefaultConfig().CacheDir
	}
	return config, nil
}

// Build converts the on-disk form into the engine's build configuration.
func (c Config) Build() (types.BuildConfig, error) {
	target, err := version.Parse(c.TargetVersion)
	if err != nil {
		return types.BuildConfig{}, &types.ConfigurationError{Reason: err.Error()}
	}
	return types.BuildConfig{
		Target:   target,
		Force:    c.Force,
		Fixers:   types.ParseAllowlist(c.Fixers),
		Checkers: types.ParseAllowlist(c.Checkers),
	}, nil
}

// New builds an engine from a config file path.
func New(configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Build()
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(cfg)
}

// Result reports one processed source unit.
type Result struct {
	Path      string
	FromCache bool
}

// ProcessFiles transpiles every tree file under the given paths, in place.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine *internal.Engine,
	cache *internal.Cache,
	paths []string,
) ([]Result, error) {
	var results []Result
	for _, path := range paths {
		res, err := ProcessPath(ctx, logger, engine, cache, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

// ProcessPath transpiles one file, or every tree file under a directory
// using a worker per file bounded by the CPU count.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine *internal.Engine,
	cache *internal.Cache,
	path string,
) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if _, ok := astcodec.FormatForPath(path); !ok {
			return nil, nil
		}
		res, err := ProcessFile(engine, cache, path)
		if err != nil {
			return nil, err
		}
		return []Result{res}, nil
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if _, ok := astcodec.FormatForPath(filePath); !fileInfo.IsDir() && ok {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	var mu sync.Mutex
	var results []Result

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, filePath := range files {
		fp := filePath
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := ProcessFile(engine, cache, fp)
			_ = bar.Add(1)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				return err
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fmt.Println()
	return results, nil
}

// ProcessFile transpiles a single serialized tree file in place: decode,
// check, fix, materialize imports, encode. The cache short-circuits
// unchanged inputs unless the configuration forces a re-transpile; forced
// outputs still refresh the cache.
func ProcessFile(engine *internal.Engine, cache *internal.Cache, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	format, ok := astcodec.FormatForPath(path)
	if !ok {
		return Result{}, fmt.Errorf("%s is not a serialized tree file", path)
	}

	cfg := engine.Config()
	key := internal.Key(data, cfg)
	if cache != nil && !cfg.Force {
		if out, hit := cache.Get(key); hit {
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
			}
			return Result{Path: path, FromCache: true}, nil
		}
	}

	tree, err := astcodec.Decode(data, format)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	tree, decls, err := engine.Transpile(tree)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	internal.EnsureImports(tree, decls)

	out, err := astcodec.Encode(tree, format)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	if cache != nil {
		if err := cache.Set(key, out); err != nil {
			return Result{}, err
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Result{Path: path}, nil
}
