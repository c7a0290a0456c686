package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyverse/pydown/internal"
	"github.com/pyverse/pydown/transpile"
)

var runCmd = &cobra.Command{
	Use:   "run <paths...>",
	Short: "Transpile tree files in place",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := transpile.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
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

		results, err := transpile.ProcessFiles(ctx, logger, engine, cache, args)
		if err != nil {
			logger.Fatal("Transpile failed", zap.Error(err))
		}
		for _, res := range results {
			fields := []zap.Field{zap.String("path", res.Path)}
			if res.FromCache {
				fields = append(fields, zap.Bool("cached", true))
			}
			logger.Info("Transpiled", fields...)
		}
	},
}
