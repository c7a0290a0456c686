package transpile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyverse/pydown/internal"
	"github.com/pyverse/pydown/internal/astcodec"
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty path yields defaults", func(t *testing.T) {
		t.Parallel()
		config, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "2.7", config.TargetVersion)
		assert.NotEmpty(t, config.CacheDir)
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".pydown.yaml")
		content := `
name: demo
target_version: "3.5"
fixers: "remove-ann-assign, inline-kw-only-args"
force: true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", config.Name)
		assert.Equal(t, "3.5", config.TargetVersion)
		assert.True(t, config.Force)
		assert.NotEmpty(t, config.CacheDir, "unset cache dir falls back to the default")

		cfg, err := config.Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"remove-ann-assign", "inline-kw-only-args"}, cfg.Fixers)
	})

	t.Run("missing file reported", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed target version rejected at build", func(t *testing.T) {
		t.Parallel()
		config := DefaultConfig()
		config.TargetVersion = "latest"
		_, err := config.Build()
		var cfgErr *types.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

// writeTree serializes a module with a single range(3) call expression.
func writeTree(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	rangeCall := pyast.NewCall(
		pyast.NewName("range", pyast.CtxLoad),
		[]*pyast.Node{pyast.NewNum(3)},
		nil,
	)
	mod := pyast.New(pyast.KindModule).SetList("body", []*pyast.Node{
		pyast.NewExprStmt(rangeCall),
	})
	data, err := astcodec.Encode(mod, astcodec.FormatJSON)
	require.NoError(t, err)

	path := filepath.Join(dir, "unit.ast.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func newTestEngine(t *testing.T) *internal.Engine {
	t.Helper()
	cfg, err := DefaultConfig().Build()
	require.NoError(t, err)
	engine, err := internal.NewEngine(cfg)
	require.NoError(t, err)
	return engine
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	t.Run("transpiles in place", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, _ := writeTree(t, dir)
		engine := newTestEngine(t)
		cache, err := internal.NewCache(filepath.Join(dir, "cache"))
		require.NoError(t, err)

		res, err := ProcessFile(engine, cache, path)
		require.NoError(t, err)
		assert.False(t, res.FromCache)

		out, err := os.ReadFile(path)
		require.NoError(t, err)
		tree, err := astcodec.Decode(out, astcodec.FormatJSON)
		require.NoError(t, err)

		body := tree.List("body")
		require.NotEmpty(t, body)
		// Future imports lead, the range call is renamed.
		assert.Equal(t, pyast.KindImportFrom, body[0].Kind)
		last := body[len(body)-1]
		assert.Equal(t, "xrange", last.Child("value").Child("func").Str("id"))
	})

	t.Run("unchanged input hits the cache", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, original := writeTree(t, dir)
		engine := newTestEngine(t)
		cache, err := internal.NewCache(filepath.Join(dir, "cache"))
		require.NoError(t, err)

		first, err := ProcessFile(engine, cache, path)
		require.NoError(t, err)
		require.False(t, first.FromCache)
		firstOut, err := os.ReadFile(path)
		require.NoError(t, err)

		// Same input content again: served from the cache, same output.
		require.NoError(t, os.WriteFile(path, original, 0o644))
		second, err := ProcessFile(engine, cache, path)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		secondOut, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, firstOut, secondOut)
	})

	t.Run("force bypasses the cache", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, original := writeTree(t, dir)

		config := DefaultConfig()
		config.Force = true
		cfg, err := config.Build()
		require.NoError(t, err)
		engine, err := internal.NewEngine(cfg)
		require.NoError(t, err)
		cache, err := internal.NewCache(filepath.Join(dir, "cache"))
		require.NoError(t, err)

		_, err = ProcessFile(engine, cache, path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, original, 0o644))

		res, err := ProcessFile(engine, cache, path)
		require.NoError(t, err)
		assert.False(t, res.FromCache)
	})

	t.Run("non-tree file rejected", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "plain.py")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

		engine := newTestEngine(t)
		_, err := ProcessFile(engine, nil, path)
		assert.Error(t, err)
	})
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	t.Run("directory walk finds tree files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeTree(t, dir)
		sub := filepath.Join(dir, "pkg")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		writeTree(t, sub)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.py"), []byte("x"), 0o644))

		engine := newTestEngine(t)
		results, err := ProcessPath(context.Background(), nil, engine, nil, dir)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("single non-tree file is skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "setup.py")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		engine := newTestEngine(t)
		results, err := ProcessPath(context.Background(), nil, engine, nil, path)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestInitBuildDir(t *testing.T) {
	// Chdir-based, so no t.Parallel.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	require.NoError(t, os.MkdirAll("mypkg/sub/__pycache__", 0o755))
	require.NoError(t, os.WriteFile("mypkg/unit.ast.json", []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile("mypkg/sub/other.ast.json", []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile("mypkg/sub/stale.pyc", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile("mypkg/sub/__pycache__/c.ast.json", []byte("{}"), 0o644))

	out, err := InitBuildDir("mypkg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(BuildOutputDir, "mypkg"), out)

	assert.FileExists(t, filepath.Join(out, "unit.ast.json"))
	assert.FileExists(t, filepath.Join(out, "sub", "other.ast.json"))
	assert.NoFileExists(t, filepath.Join(out, "sub", "stale.pyc"))
	assert.NoDirExists(t, filepath.Join(out, "sub", "__pycache__"))

	t.Run("absolute source rejected", func(t *testing.T) {
		_, err := InitBuildDir(string(os.PathSeparator) + "abs")
		var cfgErr *types.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}
