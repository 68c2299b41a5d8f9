// Command gittrack keeps a working tree continuously committed and
// pushed. It watches a configured set of patterns, auto-commits changes
// on an interval, and walks the user through conflict resolution when
// the remote diverges.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		os.Exit(1)
	}
}
