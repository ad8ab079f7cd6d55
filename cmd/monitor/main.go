package main

import (
	"fmt"
	"os"

	"github.com/smailliwhtes/Investment-Project-sub000/cmd/monitor/commands"
)

// main is the entry point for the watchlist monitor CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/monitor [command]
func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
