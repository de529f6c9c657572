// Command renderenv creates or updates environment variables on a Render
// service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/duboisf/renderenv/cmd"
	"github.com/duboisf/renderenv/internal/envsync"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := exitCode(cmd.Execute(ctx), os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// exitCode reports err the way operators expect and returns the process exit
// status. Failed variables were already reported line by line, so
// cmd.ErrSyncFailed adds nothing.
func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, envsync.ErrInterrupted):
		fmt.Fprintln(stdout, "[INTERRUPTED] Stopped by user.")
	case errors.Is(err, cmd.ErrSyncFailed):
	default:
		fmt.Fprintf(stderr, "[ERROR] Unexpected error: %v\n", err)
	}
	return 1
}
