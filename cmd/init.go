package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pyverse/pydown/transpile"
)

const defaultConfigName = ".pydown.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(defaultConfigName); err != nil {
			logger.Fatal("Failed to write configuration", zap.Error(err))
		}
		fmt.Printf("Configuration written to %s\n", defaultConfigName)
	},
}

func initConfigurationFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	out, err := yaml.Marshal(transpile.DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
