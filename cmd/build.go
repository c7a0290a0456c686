package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyverse/pydown/internal"
	"github.com/pyverse/pydown/transpile"
)

var force bool

var buildCmd = &cobra.Command{
	Use:   "build [package dirs...]",
	Short: "Copy package trees into the build directory and transpile them",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := transpile.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if force {
			config.Force = true
		}
		cfg, err := config.Build()
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		engine, err := internal.NewEngine(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		cache, err := internal.NewCache(config.CacheDir)
		if err != nil {
			logger.Fatal("Failed to open cache", zap.Error(err))
		}

		exitCode := 0
		for _, dir := range args {
			buildDir, err := transpile.InitBuildDir(dir)
			if err != nil {
				logger.Error("Failed to prepare build tree", zap.String("dir", dir), zap.Error(err))
				exitCode = 1
				continue
			}
			results, err := transpile.ProcessFiles(ctx, logger, engine, cache, []string{buildDir})
			if err != nil {
				logger.Error("Build failed", zap.String("dir", dir), zap.Error(err))
				exitCode = 1
				continue
			}
			printBuildSummary(buildDir, results)
		}
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	buildCmd.Flags().BoolVar(&force, "force", false, "Bypass the transpile cache")
}

func printBuildSummary(buildDir string, results []transpile.Result) {
	cached := 0
	for _, res := range results {
		if res.FromCache {
			cached++
		}
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf(
		"%s %s: %d files transpiled (%d from cache)\n",
		green("ok"), buildDir, len(results), cached,
	)
}
