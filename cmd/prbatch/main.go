package main

import (
	"os"

	"github.com/dshills/prbatch/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
