package main

import (
	"os"

	"github.com/grovetools/reqs/cli"
	"github.com/grovetools/reqs/cmd"
)

func main() {
	os.Exit(cli.Execute(cmd.NewRootCmd()))
}
