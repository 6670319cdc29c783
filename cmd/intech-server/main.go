package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/app"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
