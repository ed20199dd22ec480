package main

import (
	"os"

	"creatorwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
