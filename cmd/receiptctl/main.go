package main

import (
	"fmt"
	"os"

	"github.com/eleven-freight/internal/cli"
)

func main() {
	if err := cli.RootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
