package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/hydra-collections/internal/config"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

func main() {
	email := flag.String("email", "", "email recorded in the token")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: issue-token [-email addr] <user-id>")
		os.Exit(1)
	}

	userID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		log.Fatalf("Invalid user id %q: %v", flag.Arg(0), err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry, clock.WallClock)

	token, err := jwtService.GenerateToken(models.Principal{ID: userID, Email: *email})
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
}
