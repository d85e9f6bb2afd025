package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/corpora-labs/corpora-cli/internal/adapters/driving/cli"
)

func main() {
	// A .env in the working directory supplies API keys during development.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
