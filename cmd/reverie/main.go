package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cmd, session := newRootCommand()
	err := cmd.Execute()
	if closeErr := session.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
