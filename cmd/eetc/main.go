package main

import (
	"os"

	"github.com/east-empire-trading-company/eetc-utils/cmd/eetc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
