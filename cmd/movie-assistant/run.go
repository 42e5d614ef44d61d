// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/movie-assistant/internal/config"
	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	Long: `Run connects to Telegram with long polling and answers messages until
interrupted. It needs TELEGRAM_TOKEN, OPENROUTER_API_KEY, TMDB_API_KEY and
DATABASE_PATH; a missing one stops startup before any network call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(config.Everything...)
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		log := logging.Component(ctx, "run")

		if cfg.MetricsAddr != "" {
			go func() {
				if err := a.metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
					log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
				}
			}()
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
		}

		bot, err := telegram.NewBot(cfg.TelegramToken, &http.Client{Transport: a.metrics.Transport("telegram", nil)})
		if err != nil {
			return err
		}
		log.Info().Str("bot", bot.Self.UserName).Msg("authorized")

		return telegram.Run(ctx, bot, a.router)
	},
}

func init() {
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	_ = viper.BindPFlag("metrics_addr", runCmd.Flags().Lookup("metrics-addr"))

	rootCmd.AddCommand(runCmd)
}
