/*
Package udlcoach is a dialogue engine that coaches educators through designing
and evaluating assessments against the Universal Design for Learning (UDL)
framework.

Each conversation is a session identified by an opaque token. Every inbound
message is one turn: the engine loads the session record, walks a fixed state
graph (design branch, evaluate branch, a shared quality-check loop and a sink
End state), calls the configured language backends where the graph needs them,
appends the exchange to the transcript and persists the new record.

# Guarantees

  - Turns on the same token are serialized; turns on different tokens run concurrently.
  - A failed turn persists nothing: a retry re-enters the same state.
  - Keyword branching (design/evaluate, yes/no, finalize) is deterministic; only
    slot extraction, alignment and content generation reach the backends.
  - Alignment classification is fail-safe: any failure routes to "not aligned".

# Usage

	eng := udlcoach.New(
		udlcoach.WithClassifier(client),
		udlcoach.WithGenerator(client),
		udlcoach.WithRepository(memory.NewStore()),
	)

	reply, err := eng.Send(ctx, "", "design")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Token, reply.State, reply.Text)

	// Continue the same session
	reply, err = eng.Send(ctx, reply.Token, "Grade 4 math, comparing fractions")

Transports (HTTP, MCP, terminal) live under pkg/adapters and cmd/udlcoach and
only ever talk to the Engine.
*/
package udlcoach
