// Command indexbuilder builds a MiniSearch-compatible search index from a
// JSON document corpus and prints the serialized artifact.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/index-builder/cmd/indexbuilder/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
