package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"auditserver/criteria"
	"auditserver/database"
	"auditserver/internal/config"
	"auditserver/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	audit, err := database.NewAuditDB(cfg.AuditDatabasePath)
	if err != nil {
		log.Fatalf("Failed to open audit database: %v", err)
	}
	defer audit.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, criteria.NewRunner(), audit)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
