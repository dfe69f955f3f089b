// Command allms runs one-shot structured completions from the terminal,
// mainly for trying out prompts and schemas against different providers.
package main

import (
	"fmt"
	"os"

	"github.com/neferdata/allms-go/cmd/allms/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
