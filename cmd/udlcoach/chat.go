package main

import (
	"context"
	"os"

	"github.com/aretw0/udlcoach/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the coach in the terminal",
	Long: `Starts an interactive conversation. Pass --session to resume a stored
conversation; use a persistent store (--store file) to keep it between runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		// Logs go to stderr; keep them out of the conversation unless debugging.
		app, err := buildApp(sigCtx, cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		_, err = cli.RunChat(sigCtx, app, cli.ChatOptions{
			Token:    token,
			JSON:     jsonMode,
			Headless: headless,
			Pretty:   interactive && !jsonMode && !headless,
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session token to resume or create")
	chatCmd.Flags().Bool("json", false, "Exchange JSON lines on stdin/stdout")
	chatCmd.Flags().Bool("headless", false, "Plain output without banner or notices")

	// Chat is the default when no command is given.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
