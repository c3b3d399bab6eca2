package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/vault/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ vault failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ vault stopped with error: %v", err)
	}
}
