package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/request"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM requests").Error; err != nil {
				log.Fatalf("failed to clear requests: %v", err)
			}
			if err := db.Exec("DELETE FROM identities").Error; err != nil {
				log.Fatalf("failed to clear identities: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		identities := []auth.Identity{
			{Subject: "seed-fadhil", Email: "fadhil@mail.com", Name: "Fadhil"},
			{Subject: "seed-padil", Email: "padil@mail.com", Name: "Padil Superior"},
		}

		for _, identity := range identities {
			var exists int
			row := db.Raw("SELECT 1 FROM identities WHERE email = ?", identity.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("identity already exists:", identity.Email)
				continue
			}
			if err := db.Create(&identity).Error; err != nil {
				log.Fatalf("failed to insert identity %s: %v", identity.Email, err)
			}
			fmt.Println("Seeded identity:", identity.Email)
		}

		samples := []request.Request{
			{
				ID:          uuid.NewString(),
				Title:       "Annual leave next week",
				Description: "Taking Monday through Wednesday off.",
				Category:    request.CategoryLeave,
				Urgency:     "normal",
				Requestor:   request.Participant{Email: "fadhil@mail.com", Name: "Fadhil"},
				Superior:    request.Participant{Email: "padil@mail.com", Name: "Padil Superior"},
				Status:      request.StatusPending,
			},
			{
				ID:          uuid.NewString(),
				Title:       "Second monitor",
				Description: "Need a second monitor for the new project.",
				Category:    request.CategoryEquipment,
				Urgency:     "low",
				Requestor:   request.Participant{Email: "fadhil@mail.com", Name: "Fadhil"},
				Superior:    request.Participant{Email: "padil@mail.com", Name: "Padil Superior"},
				Status:      request.StatusApproved,
			},
		}

		for _, sample := range samples {
			var exists int
			row := db.Raw("SELECT 1 FROM requests WHERE title = ? AND requestor_email = ?", sample.Title, sample.Requestor.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("request already exists:", sample.Title)
				continue
			}
			sample.CreatedAt = time.Now()
			sample.UpdatedAt = sample.CreatedAt
			if err := db.Create(&sample).Error; err != nil {
				log.Fatalf("failed to insert request %q: %v", sample.Title, err)
			}
			fmt.Println("Seeded request:", sample.Title)
		}

		fmt.Println("Seeding complete")
	},
}
