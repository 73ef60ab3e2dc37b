package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
	"brotot_gym/internal/services"
)

// Connectivity smoke check: reads both worksheets and prints the derived
// status counts without writing anything.
func main() {
	verbose := flag.Bool("verbose", false, "print every member with their status tag")
	flag.Parse()

	// Load envs
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	sheetsSvc, err := services.InitSheets(ctx, cfg.Sheets.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Google Sheets client: %v", err)
	}

	logger := zerolog.Nop()
	directory := services.NewMemberDirectory(sheetsSvc, cfg.Sheets, logger)
	ledger := services.NewTransactionLedger(sheetsSvc, cfg.Sheets, logger)

	members, err := directory.ListMembers(ctx)
	if err != nil {
		log.Fatalf("Failed to read members: %v", err)
	}
	transactions, err := ledger.ListTransactions(ctx)
	if err != nil {
		log.Fatalf("Failed to read transactions: %v", err)
	}

	statuses := models.DeriveStatuses(members, transactions, time.Now())

	counts := map[models.StatusTag]int{}
	for _, s := range statuses {
		counts[s.Tag]++
		if *verbose {
			log.Printf("%4d %-20s %s", s.Member.MemberID, s.Member.NickName, s.Tag)
		}
	}

	log.Printf("%d members, %d transactions", len(members), len(transactions))
	log.Printf("Green: %d, Yellow: %d, Red: %d",
		counts[models.StatusGreen], counts[models.StatusYellow], counts[models.StatusRed])
}
