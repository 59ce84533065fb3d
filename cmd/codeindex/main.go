// Command codeindex is the CLI entrypoint wiring the indexing engine's
// core (components A-J) to a terminal.
package main

import "github.com/mvp-joe/codeindex/internal/cli"

func main() {
	cli.Execute()
}
