// The main package for the versecrawler executable.
package main

import (
	"github.com/jsalter/versecrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
