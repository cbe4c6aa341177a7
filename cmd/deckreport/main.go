// Package main is the deckreport command line: extract slides, preview
// slide ranges and generate a report without running the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dgallion1/deckreport/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "deckreport",
	Short: "Turn a slide deck into a sectioned technical report",
	Long: `deckreport reads a presentation (.pptx or .pdf), optionally renders page
images from a companion PDF, and writes a .docx report: one synthesized
narrative per section, followed by the section's slides as numbered figures.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or ~/.deckreport/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
}

// loadConfig reads configuration honoring the --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(cfgFile)
}

// logger writes JSON logs to stderr so stdout stays usable for output.
func logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of deckreport",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("deckreport %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
