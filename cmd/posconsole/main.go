// Package main provides the posconsole entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/posconsole/internal/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
