package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // detected zones must load on hosts without a tz database

	"github.com/smokyabdulrahman/prayer-tracker/internal/cli"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
