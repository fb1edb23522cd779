// Package main provides a tool to seed the database with sample cards.
//
// This fills an empty deck with a few labeled knowledge cards to try the
// list, filter, and export commands against.
//
// Usage:
//
//	DATA_PATH=~/KnowDeck go run ./cmd/seed
//	DATA_PATH=~/KnowDeck go run ./cmd/seed --force  # Overwrite existing data
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/knowdeckapp/knowdeck/internal/color"
	"github.com/knowdeckapp/knowdeck/internal/domain"
	"github.com/knowdeckapp/knowdeck/internal/id"
	"github.com/knowdeckapp/knowdeck/internal/store"
)

var force = flag.Bool("force", false, "Replace existing data instead of aborting")

func main() {
	flag.Parse()

	basePath := os.Getenv("DATA_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/KnowDeck")
	}
	dbPath := filepath.Join(basePath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s := store.New(dbPath, nil)
	defer s.Close()

	ctx := context.Background()

	hasLabels, hasCards, err := s.HasAny(ctx)
	if err != nil {
		log.Fatalf("Failed to probe store: %v", err)
	}
	if (hasLabels || hasCards) && !*force {
		log.Fatal("Store already holds data. Re-run with --force to replace it.")
	}

	labels := []domain.Label{
		{ID: id.New(), Name: "Go"},
		{ID: id.New(), Name: "Concurrency"},
		{ID: id.New(), Name: "Databases"},
	}
	for i := range labels {
		labels[i].Color = color.ForIndex(i)
	}

	now := domain.NowMillis()
	cards := []domain.Card{
		{
			ID:    id.New(),
			Title: "Channel direction in signatures",
			Body: "Accepting <-chan or chan<- instead of a bidirectional channel documents " +
				"intent and lets the compiler catch misuse at the call site.",
			LabelIDs:  []string{labels[0].ID, labels[1].ID},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:    id.New(),
			Title: "errors.Is vs errors.As",
			Body: "Is walks the chain comparing sentinels; As walks it looking for a " +
				"concrete type to unwrap into. Pick the one matching what the caller branches on.",
			LabelIDs:  []string{labels[0].ID},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:    id.New(),
			Title: "Read-modify-write needs a transaction",
			Body: "Two clients incrementing the same counter through separate reads will " +
				"lose updates unless the read and write share a transaction.",
			LabelIDs:  []string{labels[2].ID},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.SaveLabels(ctx, labels); err != nil {
		log.Fatalf("Failed to save labels: %v", err)
	}
	if err := s.SaveCards(ctx, cards); err != nil {
		log.Fatalf("Failed to save cards: %v", err)
	}

	fmt.Printf("Seeded %d labels and %d cards\n", len(labels), len(cards))
}
