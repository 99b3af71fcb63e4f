package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/postmortem/cmd"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.Execute(ctx)
	interrupted := errors.Is(err, pmerrors.ErrInterrupted) || ctx.Err() != nil
	stop()

	if interrupted {
		fmt.Fprintln(os.Stderr, "Terminated by user.")
		os.Exit(1)
	}
	if err != nil {
		os.Exit(1)
	}
}
