package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	// Argument-count check happens before option parsing: a bare
	// invocation (or a lone flag) prints usage and exits 1, while
	// malformed or incomplete options exit 2 below.
	if len(os.Args[1:]) < 2 {
		cmd := newRootCommand()
		_ = cmd.Usage()
		os.Exit(1)
	}

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr.Error())
			_ = cmd.Usage()
			os.Exit(2)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
