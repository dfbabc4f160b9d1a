package main

import (
	"fmt"
	"os"

	"github.com/generic19/FastersApp/internal/cli"
	"github.com/generic19/FastersApp/internal/display"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, display.Errorf("%s", cli.Describe(err)))
		os.Exit(cli.ExitCode(err))
	}
}
