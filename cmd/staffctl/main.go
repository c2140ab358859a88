// Command staffctl provisions staff accounts for the check-in station:
// it creates an account with a bcrypt-hashed password and, optionally,
// assigns it to an event with a set of permissions.
//
//	staffctl -name "Ann Operator" -email ann@example.com -password secret \
//	    -event-id EVT-1 -event-name "Summer Gala" -permissions checkin
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv" // .env loading for local development

	"github.com/v4entertainments/ticket-checkin/internal/config"
	"github.com/v4entertainments/ticket-checkin/internal/database"
	"github.com/v4entertainments/ticket-checkin/internal/repository"
	"github.com/v4entertainments/ticket-checkin/internal/utils"
)

func main() {
	var (
		name        = flag.String("name", "", "staff display name (required)")
		email       = flag.String("email", "", "staff login email (required)")
		password    = flag.String("password", "", "initial password (required)")
		eventID     = flag.String("event-id", "", "event to assign the account to")
		eventName   = flag.String("event-name", "", "event title for session display")
		permissions = flag.String("permissions", "checkin", "comma-separated permissions for the assignment")
	)
	flag.Parse()
	if *name == "" || *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("-name, -email and -password are required")
	}
	if *eventID != "" && *eventName == "" {
		log.Fatal("-event-name is required when -event-id is set")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewStaffRepo(db)
	staff, err := repo.Create(ctx, *name, *email, hash)
	if err != nil {
		log.Fatalf("create staff: %v", err)
	}
	log.Printf("created staff %s (%s)", staff.ID, staff.Email)

	if *eventID != "" {
		if err := repo.AssignEvent(ctx, staff.ID, *eventID, *eventName, *permissions); err != nil {
			log.Fatalf("assign event: %v", err)
		}
		log.Printf("assigned %s to event %s with permissions %q", staff.Email, *eventID, *permissions)
	}
}
