// Command test-action is a manual test for the desktop HID backend.
// It waits 3 seconds, then runs one action from the General profile.
// Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-action [--key 0-11] [--text "hello"]
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/chaz8081/micropad/internal/action"
	"github.com/chaz8081/micropad/internal/inject"
	"github.com/chaz8081/micropad/internal/profile"
)

func main() {
	key := flag.Int("key", -1, "run the General profile binding of this key")
	text := flag.String("text", "hello from micropad", "text to type when --key is not set")
	flag.Parse()

	var a action.Action = action.Text{Text: *text}
	if *key >= 0 && *key < profile.NumKeys {
		a = profile.General().Keys[*key].Action
	}

	fmt.Printf("Will run %s in 3 seconds...\n", action.Describe(a))
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	exec := action.NewExecutor(inject.NewDesktop(), nil, action.ExecutorOptions{})
	if err := exec.Execute(a); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("\nDone!")
}
