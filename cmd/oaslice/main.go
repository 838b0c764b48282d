package main

import (
	"fmt"
	"os"

	"github.com/kolah/oaslice/internal/cli"
)

func main() {
	cmd := cli.RootCmd()
	cmd.SetOut(os.Stdout)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}
