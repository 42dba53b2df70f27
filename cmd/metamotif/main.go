// 3 Apr 2023

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrew-torda/metamotif/pkg/cli"
	"github.com/andrew-torda/metamotif/pkg/seq/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRoot().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(common.ExitFailure)
	}
	os.Exit(common.ExitSuccess)
}
