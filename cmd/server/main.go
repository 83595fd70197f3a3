// Package main is the entry point for the DSPyBridge HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dspybridge",
	Short: "DSPyBridge HTTP API server",
	Long: "DSPyBridge forwards user messages to an LLM orchestration layer " +
		"(prompt signatures, chain of thought, a ReAct tool-using agent) and " +
		"hosts a keyword-overlap RAG pipeline over a directory of documents.",
}

func main() {
	// Load .env for local runs; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
