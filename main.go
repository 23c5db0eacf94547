// Package main is the entry point for the dsbench CLI application.
// It orchestrates TPC-DS data generation, bulk import and federated
// query rewriting.
package main

import (
	"dsbench/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
