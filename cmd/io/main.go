package main

import (
	"os"

	"github.com/MathNerdGamer/OSTEP/internal/cli"
)

func main() {
	os.Exit(cli.ExecuteIO(os.Args, os.Stdout, os.Stderr))
}
