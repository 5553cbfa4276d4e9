// Command sslrelay runs the bidirectional TCP/TLS relay with the default,
// pass-through handler.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

const (
	exitOK     = 0
	exitConfig = 1
	exitBind   = 2
	exitINT    = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)

	ctxErr := ctx.Err()
	stop()

	if err != nil {
		var cfgErr *configFailure
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitConfig)
		}
		if ctxErr != nil {
			os.Exit(exitINT)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitBind)
	}
	if ctxErr != nil {
		os.Exit(exitINT)
	}
}
