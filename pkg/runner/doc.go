/*
Package runner implements the interactive chat loop over a Coach.

It reads messages through a pluggable IOHandler, sends each one as a turn
and presents the reply. TextHandler serves terminals (optionally rendering
markdown), JSONHandler serves programs speaking JSON lines on stdin/stdout.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	token, err := r.Run(ctx, coach, "")
*/
package runner
