// Command validate checks a balance YAML file for values that would
// break gameplay invariants.
//
// Usage: validate [path/to/balance.yaml]
//
// With no argument, validates the embedded defaults.
package main

import (
	"fmt"
	"os"

	"github.com/moonlit-labs/moonling-engine/internal/config"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	balance, err := config.LoadBalance(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid balance: %v\n", err)
		os.Exit(1)
	}

	target := "embedded defaults"
	if path != "" {
		target = path
	}
	fmt.Printf("%s: OK (%d actions, %d challenge types)\n", target, len(balance.Actions), len(balance.Challenges))
}
