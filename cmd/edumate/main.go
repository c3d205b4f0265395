package main

import (
	"github.com/joho/godotenv"

	"edumate/internal/cli"
)

func main() {
	// API keys may live in a local .env; absence is fine.
	godotenv.Load()

	cli.Execute()
}
