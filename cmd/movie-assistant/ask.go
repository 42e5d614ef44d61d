// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-assistant/internal/config"
	"github.com/pdiddy/movie-assistant/internal/session"
)

// localUserID identifies the terminal user in the store.
const localUserID = 1

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Answer one request from the terminal",
	Long: `Ask runs one message through the same pipeline as the bot and prints
the reply. Commands work too: movie-assistant ask /popular`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newLocalApp()
		if err != nil {
			return err
		}
		defer a.Close()

		userID, _ := cmd.Flags().GetInt64("user-id")
		reply := a.router.Handle(cmd.Context(), session.Message{
			UserID:   userID,
			Username: "local",
			Text:     strings.Join(args, " "),
		})
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively from the terminal",
	Long: `Chat reads one message per line from standard input and prints each
reply. An empty line is ignored; "exit" or end of input quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newLocalApp()
		if err != nil {
			return err
		}
		defer a.Close()

		userID, _ := cmd.Flags().GetInt64("user-id")
		out := cmd.OutOrStdout()
		sc := bufio.NewScanner(cmd.InOrStdin())

		fmt.Fprint(out, "> ")
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			switch {
			case line == "exit" || line == "quit":
				return nil
			case line != "":
				reply := a.router.Handle(cmd.Context(), session.Message{UserID: userID, Username: "local", Text: line})
				fmt.Fprintf(out, "%s\n\n", reply.Text)
			}
			if cmd.Context().Err() != nil {
				return nil
			}
			fmt.Fprint(out, "> ")
		}
		return sc.Err()
	},
}

// newLocalApp builds the pipeline for the terminal transports, which need
// everything the bot needs except the Telegram token.
func newLocalApp() (*app, error) {
	cfg, err := loadConfig(config.RequireLLM, config.RequireCatalog, config.RequireDatabase)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func init() {
	for _, c := range []*cobra.Command{askCmd, chatCmd} {
		c.Flags().Int64("user-id", localUserID, "user id the terminal session is stored under")
		rootCmd.AddCommand(c)
	}
}
