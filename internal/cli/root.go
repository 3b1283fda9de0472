// Package cli wires the kioskcal commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kioskcal/internal/config"
	appLog "kioskcal/internal/log"
)

var (
	version = "dev"
	commit  string
)

// SetVersion sets the version shown by --version, normally from ldflags.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// app carries state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kioskcal",
		Short:         "Render event calendars and timelines for the lobby kiosk",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", a.configPath, err)
			}
			a.cfg = cfg

			level := appLog.ParseLevel(cfg.LogLevel)
			if a.verbose {
				level = appLog.LevelDebug
			}
			appLog.SetLevel(level)
			appLog.Debug("config loaded", "path", a.configPath, "output_dir", cfg.OutputDir)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("kioskcal %s %s\n", version, commit))
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath(), "config file (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newScheduleCmd(a))
	root.AddCommand(newPublishCmd(a))

	return root
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func defaultConfigPath() string {
	if p := os.Getenv("KIOSKCAL_CONFIG"); p != "" {
		return p
	}
	return "kioskcal.yaml"
}
