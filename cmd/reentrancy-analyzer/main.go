// Command reentrancy-analyzer scans compiled Solidity AST artifacts for
// reentrancy vulnerability patterns.
package main

import (
	"os"

	"github.com/vesla0x1/reentrancy-analyzer/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.LogError("%v", err)
		os.Exit(1)
	}
}
