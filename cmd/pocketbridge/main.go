// pocketbridge resolves a URL to readable article text, collects words and
// phrases into a persistent pocket, and hands them to a vocabulary app.
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/masato-nasu/pocketbridge/internal/app"
)

var flags struct {
	configPath string
	storePath  string
	timeout    time.Duration
	noFallback bool
	jinaPrefix string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "pocketbridge",
	Short: "Extract readable article text and collect vocabulary from it",
	Long: `pocketbridge resolves a URL (or shared text containing one) to clean
article text by racing a direct fetch against a remote reader service,
keeps a pocket of captured words and phrases, and builds hand-off URLs
for the TANGO-CHO vocabulary app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		if flags.verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to YAML config file")
	pf.StringVar(&flags.storePath, "store", "", "Path to the persisted state file")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Per-fetch wall-clock budget (default 9s)")
	pf.BoolVar(&flags.noFallback, "no-fallback", false, "Disable the remote reader fallback path")
	pf.StringVar(&flags.jinaPrefix, "jina-prefix", "", "Remote reader service prefix")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(readCmd, pocketCmd, historyCmd, serveCmd)
}

// buildConfig layers flags over an optional config file over defaults.
func buildConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()

	path := flags.configPath
	optional := false
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "pocketbridge", "config.yaml")
		}
		optional = true
	}
	if path != "" {
		fc, err := app.LoadFileConfig(path, optional)
		if err != nil {
			return cfg, err
		}
		fc.Apply(&cfg)
	}

	if flags.storePath != "" {
		cfg.StorePath = flags.storePath
	}
	if flags.timeout > 0 {
		cfg.Timeout = flags.timeout
	}
	if cmd.Flags().Changed("no-fallback") || rootCmd.PersistentFlags().Changed("no-fallback") {
		cfg.UseJinaFallback = !flags.noFallback
	}
	if flags.jinaPrefix != "" {
		cfg.JinaPrefix = flags.jinaPrefix
	}
	cfg.Verbose = flags.verbose
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
