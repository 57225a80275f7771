package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/runas/internal/cli"
	"github.com/dmitrijs2005/runas/internal/common"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := cli.InitSignalHandler(cancel)
	defer stop()

	err := cli.New(version, cli.StdStreams()).RunContext(ctx, os.Args)
	code := common.ExitCodeOf(err)
	if err != nil && code != common.ExitOK {
		fmt.Fprintln(os.Stderr, "ERROR: "+err.Error())
	}
	return int(code)
}
