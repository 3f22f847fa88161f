// Command toonboard plans instatoon storyboards with an OpenAI-compatible
// model, from the terminal or through a small web server.
package main

import (
	"context"
	"os"
)

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
