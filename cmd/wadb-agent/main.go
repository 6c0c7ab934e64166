package main

import (
	"fmt"
	"os"

	"github.com/autopair-dev/wadb-agent/pkg/cli"
)

var version = "dev"

func main() {
	app := cli.New(version)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
