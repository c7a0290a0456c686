package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	hashiver "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyverse/pydown/internal/fixers"
	"github.com/pyverse/pydown/internal/version"
)

var fixersTarget string

var fixersCmd = &cobra.Command{
	Use:   "fixers",
	Short: "List the registered fixers and their version windows",
	Run: func(cmd *cobra.Command, args []string) {
		var target *hashiver.Version
		if fixersTarget != "" {
			v, err := version.Parse(fixersTarget)
			if err != nil {
				logger.Fatal("Invalid target version", zap.Error(err))
			}
			target = v
		}
		printFixerCatalog(target)
	},
}

func init() {
	fixersCmd.Flags().StringVar(&fixersTarget, "target", "", "Only show fixers that apply to this version")
}

func printFixerCatalog(target *hashiver.Version) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	w := os.Stdout
	for _, fx := range fixers.Catalog() {
		win := fx.Window()
		if target != nil && !win.AppliesTo(target) {
			continue
		}
		fmt.Fprintf(w, "%s\n", bold(fx.Name()))
		fmt.Fprintf(w, "  applies: %s\n", cyan(formatRange(win.ApplySince, win.ApplyUntil)))
		fmt.Fprintf(w, "  works:   %s\n", cyan(formatWorksRange(win)))
		if guarded, ok := fx.(fixers.Guarded); ok {
			fmt.Fprintf(w, "  guard:   %s\n", yellow(guarded.GuardChecker()))
		}
	}
}

func formatRange(since, until *hashiver.Version) string {
	return fmt.Sprintf("%s - %s", since, until)
}

func formatWorksRange(win version.Window) string {
	since := win.WorksSince
	if since == nil {
		since = win.ApplySince
	}
	if win.WorksUntil == nil {
		return fmt.Sprintf("%s and above", since)
	}
	return formatRange(since, win.WorksUntil)
}
