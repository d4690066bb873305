package main

import (
	"os"

	"github.com/dshills/packwizml/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
