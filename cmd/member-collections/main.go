package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dimitrije/hydra-collections/internal/config"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/dimitrije/hydra-collections/internal/store"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: member-collections <member-id>")
		os.Exit(1)
	}

	memberID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatalf("Invalid member id %q: %v", os.Args[1], err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	objects, err := store.Open(ctx, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to open object store: %v", err)
	}
	defer objects.Close()

	memberService := services.NewMemberService(objects, clock.WallClock, zap.NewNop(), nil)

	member, err := memberService.GetByID(ctx, memberID)
	if err != nil {
		log.Fatalf("Failed to find member: %v", err)
	}

	// Operators see what the member's depositor would see.
	collections, err := memberService.Collections(ctx, models.Principal{ID: member.Depositor}, memberID)
	if err != nil {
		log.Fatalf("Failed to look up collections: %v", err)
	}

	if len(collections) == 0 {
		fmt.Printf("Member %s is not in any collection\n", memberID)
		return
	}

	for _, c := range collections {
		fmt.Printf("%s\t%s\t%s\n", c.ID, c.DateUploaded.Format(time.RFC3339), c.Title)
	}
}
