package udlcoach_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/udlcoach"
	"github.com/aretw0/udlcoach/pkg/adapters/memory"
)

// ExampleNew shows the keyword-driven first turns, which need no language backend.
func ExampleNew() {
	eng := udlcoach.New(
		udlcoach.WithRepository(memory.NewStore()),
		udlcoach.WithTokenGenerator(func() string { return "demo" }),
	)

	ctx := context.Background()
	reply, err := eng.Send(ctx, "", "hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Token, reply.State)

	reply, err = eng.Send(ctx, reply.Token, "Design")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.State, reply.Branch, reply.MessageCount)
	// Output:
	// demo start
	// design_mode design 4
}
