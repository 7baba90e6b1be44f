package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// exitInterrupted is the conventional status for a run ended by SIGINT.
const exitInterrupted = 130

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
