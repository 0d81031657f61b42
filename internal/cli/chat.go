package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/udlcoach/internal/config"
	"github.com/aretw0/udlcoach/internal/presentation/tui"
	"github.com/aretw0/udlcoach/pkg/runner"
)

// ChatOptions configures an interactive chat session.
type ChatOptions struct {
	Token    string
	JSON     bool
	Headless bool
	// Pretty renders markdown replies and prints the banner (interactive terminals).
	Pretty bool

	Stdin  io.Reader
	Stdout io.Writer
}

// RunChat runs the chat loop until the input ends or ctx is canceled.
// It returns the token of the session used. Interruptions are not errors.
func RunChat(ctx context.Context, app *App, opts ChatOptions) (string, error) {
	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	case opts.Pretty:
		tui.PrintBanner(opts.Stdout)
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	default:
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout)
	}

	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithLogger(app.Logger),
		runner.WithHeadless(opts.Headless || opts.JSON),
	)

	token, err := r.Run(ctx, app.Engine, opts.Token)
	if err != nil && !isInterrupted(err) {
		return token, err
	}
	if token != "" && !opts.JSON && !opts.Headless && app.Config.Store.Driver != config.DriverMemory {
		fmt.Fprintf(opts.Stdout, "\nSession %s saved. Resume with --session %s\n", token, token)
	}
	app.Logger.Info("chat finished", "token", token)
	return token, nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}
