// Package main is the entry point for the booksctl operator CLI.
package main

import (
	"os"

	"github.com/SscSPs/prompt_books/cmd/booksctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
