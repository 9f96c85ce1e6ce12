package main

import (
	"os"

	"github.com/codalotl/docmodules/internal/cli"
)

func main() {
	code, _ := cli.Run(os.Args, nil)
	os.Exit(code)
}
