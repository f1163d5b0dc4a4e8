package main

import (
	"fmt"
	"log"
	"os"

	"github.com/devoriginal/account-backend/config"
	"github.com/devoriginal/account-backend/internal/app/repository"
	"github.com/devoriginal/account-backend/internal/app/service"
	"github.com/devoriginal/account-backend/internal/db"
	"github.com/devoriginal/account-backend/internal/importer"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/devoriginal/account-backend/pkg/mailer"
)

// Usage:
//
//	go run ./cmd/seed                  creates the demo account
//	go run ./cmd/seed accounts.xlsx    imports accounts from a spreadsheet
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// seeding never sends real mail
	accountService := service.NewAccountService(repository.NewAccountRepository(db.GetDB()), mailer.NewLogMailer())

	if len(os.Args) < 2 {
		seedDemoAccount(accountService)
		return
	}

	filePath := os.Args[1]
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := importer.ReadAccountsXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total accounts to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	result := importer.Import(accountService, rows)
	for _, failed := range result.Failed {
		fmt.Printf("  row %d (%s): %v\n", failed.Line, failed.Email, failed.Err)
	}
	fmt.Printf("Import completed: %d created, %d failed\n", result.Created, len(result.Failed))
}

func seedDemoAccount(accountService service.AccountService) {
	const email = "ana@x.com"

	exists, err := accountService.Exists(email)
	if err != nil {
		log.Fatal("Failed to check demo account:", err)
	}
	if exists {
		fmt.Println("Demo account already exists, skipping")
		return
	}

	account, err := accountService.Create(service.CreateAccountInput{
		Name:     "Ana",
		Email:    email,
		Password: "secret1",
		BirthAt:  "1990-05-17",
	})
	if err != nil {
		log.Fatal("Failed to create demo account:", err)
	}
	fmt.Printf("Demo account created: id=%d email=%s password=secret1\n", account.ID, account.Email)
}
