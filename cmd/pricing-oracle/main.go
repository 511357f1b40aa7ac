package main

import (
	"github.com/joho/godotenv"

	"github.com/unytco/pricing-oracle/pkg/cli"

	// Import sources to register them
	_ "github.com/unytco/pricing-oracle/pkg/sources/forex"
	_ "github.com/unytco/pricing-oracle/pkg/sources/token"
)

func main() {
	// A missing .env is fine; API keys may come from the environment.
	_ = godotenv.Load()

	cli.Execute()
}
