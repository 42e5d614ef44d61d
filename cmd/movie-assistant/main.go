// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the movie-assistant CLI: the Telegram
// bot, a local chat transport and catalog maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/movie-assistant/internal/config"
	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/secrets"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the movie-assistant CLI.
var rootCmd = &cobra.Command{
	Use:   "movie-assistant",
	Short: "Telegram assistant that recommends movies from free-text requests",
	Long: `movie-assistant answers requests such as "комедия на вечер" or
"что-нибудь похожее на «Интерстеллар»" with a ranked list of movies and a
short explanation written by a language model.

Movies come from a local SQLite store, seeded from YAML, and from TMDB when
the store has nothing relevant. "run" starts the Telegram bot; "ask" and
"chat" talk to the same pipeline from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s

		logging.Init(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		if len(s) > 0 {
			logging.Logger().Debug().Strs("keys", secrets.Keys(s)).Msg("loaded secrets")
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logging.Logger().Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./movie-assistant.yaml or ~/.config/movie-assistant/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory holding secret files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	config.Bind(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("movie-assistant")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "movie-assistant"))
		}
	}

	// A missing config file is fine; everything can come from the environment.
	_ = viper.ReadInConfig()
}

// loadConfig resolves the configuration and checks the settings a command
// needs. It does no network I/O.
func loadConfig(need ...config.Requirement) (types.Config, error) {
	return config.Load(viper.GetViper(), loadedSecrets, need...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
