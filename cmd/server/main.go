package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/clientiq-crm/bff/internal/config"
	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/router"
	"github.com/clientiq-crm/bff/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()

	api := crm.New(cfg.APIBaseURL, nil)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, api, hub)

	log.Printf("Starting server on :%s (upstream %s)", cfg.Port, cfg.APIBaseURL)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
