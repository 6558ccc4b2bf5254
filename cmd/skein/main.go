package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; flags and real env still win.
	_ = godotenv.Load()
	Execute()
}
