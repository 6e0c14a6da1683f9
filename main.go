package main

import (
	"os"

	"github.com/rook-computer/flowerfield/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
