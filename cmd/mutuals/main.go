package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vytor/ghmutuals/internal/config"
	"github.com/vytor/ghmutuals/internal/errors"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(cfg).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.IsRateLimited(err) {
			fmt.Fprintln(os.Stderr, "hint: pass --token or set GITHUB_TOKEN to raise the rate limit")
		}
		os.Exit(1)
	}
}
