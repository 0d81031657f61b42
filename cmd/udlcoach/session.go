package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, reset and remove sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		tokens, err := app.Engine.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(tokens) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, token := range tokens {
			fmt.Fprintln(out, "- "+token)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <token>",
	Short: "Print the stored record of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := app.Engine.History(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		if showGraph, _ := cmd.Flags().GetBool("graph"); showGraph {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(dialogue.Edges(), &graph.GraphOverlay{CurrentNode: rec.State}))
			return nil
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling record: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Reset a session to the start, keeping its token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.Engine.Reset(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("error resetting '%s': %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset session '%s'\n", args[0])
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [token]...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 0 && !all {
			return errors.New("requires at least one token or --all")
		}

		app, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		tokens := args
		if all {
			if tokens, err = app.Engine.Sessions(cmd.Context()); err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}

		var errs []error
		for _, token := range tokens {
			if err := app.Engine.Delete(cmd.Context(), token); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", token, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", token)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("graph", false, "Print the dialogue graph with the session's current node highlighted")
	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
