package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/quickpay-go/pkg/quickpay"
)

// Exit codes for the quickpay CLI.
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitUsageError     = 2
	ExitTransportError = 4
	// ExitHTTPError is returned with --fail when the gateway answers >= 400.
	ExitHTTPError = 22
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var statusErr *httpStatusError
	switch {
	case errors.As(err, &statusErr):
		return ExitHTTPError
	case quickpay.IsTransportError(err):
		fmt.Fprintf(os.Stderr, "quickpay: %v\n", err)
		return ExitTransportError
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "quickpay: %v\n", err)
		return ExitUsageError
	default:
		fmt.Fprintf(os.Stderr, "quickpay: %v\n", err)
		return ExitFailure
	}
}
