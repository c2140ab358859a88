package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/v4entertainments/ticket-checkin/internal/auth"
	"github.com/v4entertainments/ticket-checkin/internal/checkin"
	"github.com/v4entertainments/ticket-checkin/internal/config"
	"github.com/v4entertainments/ticket-checkin/internal/database"
	"github.com/v4entertainments/ticket-checkin/internal/handler"
	"github.com/v4entertainments/ticket-checkin/internal/qr"
	"github.com/v4entertainments/ticket-checkin/internal/queue"
	"github.com/v4entertainments/ticket-checkin/internal/repository"
	"github.com/v4entertainments/ticket-checkin/internal/router"
	"github.com/v4entertainments/ticket-checkin/internal/scan"
	"github.com/v4entertainments/ticket-checkin/internal/session"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Durable session storage: Redis when reachable, otherwise process
	// memory only (the session then will not survive a restart).
	var storage session.Storage
	if client := config.NewRedisClient(); client != nil {
		storage = session.NewRedisStorage(client)
	} else {
		log.Printf("redis unavailable; station session will not survive restarts")
		storage = session.NewMemoryStorage()
	}

	staffRepo := repository.NewStaffRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	authenticator := auth.NewStaffAuthenticator(staffRepo, cfg.JWTSecret, cfg.SessionTTLHours)
	sessions := session.NewStore(authenticator, storage, cfg.MonitorInterval)
	if err := sessions.Init(context.Background()); err != nil {
		log.Printf("session rehydrate failed: %v", err)
	}

	engine := checkin.NewEngine(orderRepo, sessions)
	parser := qr.NewParser(cfg.QRDomains)
	gate := scan.NewGate()

	// Audit trail consumer; reconnects forever in the background.
	go func() {
		if err := queue.StartCheckinConsumer(); err != nil {
			log.Printf("checkin consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(sessions))
	router.RegisterCheckin(e, handler.NewCheckinHandler(gate, parser, engine, sessions), sessions, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
