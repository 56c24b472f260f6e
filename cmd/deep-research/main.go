// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deep-research CLI.
//
// The full pipeline runs under "research". Each stage is also exposed as
// its own subcommand (questions, queries, search, review, report) so runs
// can be driven step by step through task files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/internal/logging"
	"github.com/pdiddy/deep-research/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// configName is the config file base name searched in . and
// ~/.config/deep-research.
const configName = "deep-research"

var (
	// logger is built in PersistentPreRunE and synced on exit.
	logger = zap.NewNop()

	// loadedSecrets holds API keys loaded from the secrets directory.
	loadedSecrets = secrets.Store{}
)

// rootCmd is the base command for the deep-research CLI.
var rootCmd = &cobra.Command{
	Use:   "deep-research",
	Short: "Produce cited research reports with LLMs and web search",
	Long: `deep-research turns a topic into a structured Markdown report. It asks a
thinking model for search queries, runs each query against a web search
vendor, has a networking model distil every result set into a learning,
optionally reviews the learnings for gaps, and has a report model write
the final report with a References section.

Provider credentials come from flags, the config file, DEEP_RESEARCH_*
environment variables, vendor environment variables, or key files in
.secrets/ (tavily-api-key, google-api-key, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetBool("verbose"), viper.GetBool("log_json"))
		if err != nil {
			return err
		}
		logger = l
		httputil.Logger = logger.Named("http")

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", s.Names()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./"+configName+".yaml or ~/.config/deep-research/"+configName+".yaml)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.Bool("log-json", false, "log as JSON")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of API key files")
	bindPersistent(rootCmd, "verbose", "verbose")
	bindPersistent(rootCmd, "log_json", "log-json")
	bindPersistent(rootCmd, "secrets_dir", "secrets-dir")

	addOptionFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deep-research"))
		}
	}

	viper.SetEnvPrefix("DEEP_RESEARCH")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
