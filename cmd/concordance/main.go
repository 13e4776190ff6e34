package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "concordance: %v\n", err)
	}
	os.Exit(apperrors.ExitCode(err))
}
