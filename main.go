package main

import (
	"net/http"
	"os"
	"time"

	"conceptcraft/config/database"
	"conceptcraft/internal/ai"
	"conceptcraft/internal/auth"
	"conceptcraft/internal/concept/repository"
	"conceptcraft/internal/concept/service"
	"conceptcraft/internal/subscription"
	"conceptcraft/pkg/logger"
	"conceptcraft/router"
	"conceptcraft/socket"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	repo := repository.NewStateRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		logger.Sugar.Fatalf("Failed to prepare database schema: %v", err)
	}
	concepts := service.NewConceptService(repo)
	subs := subscription.NewService(repo)

	client := ai.NewClient(os.Getenv("AI_BASE_URL"), os.Getenv("OPENROUTER_API_KEY"), os.Getenv("AI_MODEL"))
	gateway := ai.NewGateway(client)

	authLatency := time.Second
	if v := os.Getenv("AUTH_LATENCY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			authLatency = d
		}
	}
	authSvc := auth.NewService(os.Getenv("JWT_SECRET"), authLatency)

	hub := socket.NewHub(repo)
	go hub.Run()

	handler := router.Setup(concepts, subs, authSvc, gateway, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Sugar.Infof("ConceptCraft backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
