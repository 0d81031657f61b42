package main

import (
	"context"
	"strings"

	"github.com/aretw0/udlcoach"
	"github.com/aretw0/udlcoach/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the coach as a JSON API over HTTP (chat, upload, session history, reset, health).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := buildApp(sigCtx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		if cmd.Flags().Changed("host") {
			app.Config.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			app.Config.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		srv := cli.NewHTTPServer(app, app.Config.Server.Addr(), strings.TrimSpace(udlcoach.Version))
		if err := cli.RunServer(sigCtx, app, srv); err != nil {
			return err
		}
		if sig := sigCtx.Signal(); sig != nil {
			app.Logger.Info("stopped by signal", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Host to bind (overrides config)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}
