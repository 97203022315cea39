package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"flight-forecast-backend/internal/logger"
	"flight-forecast-backend/pkg/faregen"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	lg, err := logger.New(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	if err := faregen.Execute(os.Args[1:], lg); err != nil {
		log.Fatalf("datasetgen failed: %v", err)
	}
}
