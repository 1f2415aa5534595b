package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tigerroll/intactdb/internal/cli"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// embeddedConfig is the default configuration. --config and INTACT_* variables override it.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, embeddedConfig, os.Args[1:])
	_ = logger.Sync()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Warnf("Interrupted.")
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
