package main

import (
	"os"

	"github.com/jcallahan/reviewd/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
