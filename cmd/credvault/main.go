package main

import (
	"os"

	"github.com/operand/credvault/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args[1:]))
}
