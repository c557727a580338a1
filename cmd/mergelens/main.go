package main

import (
	"os"

	"github.com/mergelens/mergelens/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
