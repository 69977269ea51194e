// The main package for the article-tracker executable.
package main

import (
	"github.com/notesignal/article-tracker/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
