package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aretw0/udlcoach"
	"github.com/aretw0/udlcoach/internal/cli"
	"github.com/aretw0/udlcoach/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the coach as MCP tools (chat, reset_session, session_history).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		// Stdout carries JSON-RPC in stdio mode.
		log.SetOutput(os.Stderr)
		app, err := buildApp(sigCtx, cmd, transport == "stdio")
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Engine, strings.TrimSpace(udlcoach.Version), mcp.WithLogger(app.Logger))

		switch transport {
		case "stdio":
			app.Logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			app.Logger.Info("starting MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return err
			}
			app.Logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
