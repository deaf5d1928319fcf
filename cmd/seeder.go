package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
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

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"payment_records", "stored_cards", "debtors", "portfolios", "clients"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		clients := []struct {
			ID   string
			Name string
		}{
			{"client-midland-credit", "Midland Credit Bank"},
			{"client-lakeside-medical", "Lakeside Medical Group"},
		}

		for _, c := range clients {
			var exists int
			row := db.QueryRow("SELECT 1 FROM clients WHERE id = $1", c.ID)
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO clients (id, name, created_at, updated_at) VALUES ($1, $2, now(), now())", c.ID, c.Name); err != nil {
				log.Fatalf("failed to insert client %s: %v", c.Name, err)
			}
			fmt.Println("Seeded client:", c.Name)
		}

		portfolios := []struct {
			ID       string
			Name     string
			ClientID string
		}{
			{"portfolio-cc-2024", "Charged-Off Cards 2024", "client-midland-credit"},
			{"portfolio-med-2025", "Medical Receivables 2025", "client-lakeside-medical"},
		}

		for _, p := range portfolios {
			var exists int
			row := db.QueryRow("SELECT 1 FROM portfolios WHERE id = $1", p.ID)
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO portfolios (id, name, client_id, created_at, updated_at) VALUES ($1, $2, $3, now(), now())", p.ID, p.Name, p.ClientID); err != nil {
				log.Fatalf("failed to insert portfolio %s: %v", p.Name, err)
			}
			fmt.Println("Seeded portfolio:", p.Name)
		}

		debtors := []struct {
			ID          string
			Name        string
			ClientID    string
			PortfolioID string
		}{
			{"debtor-1001", "Alice Navarro", "client-midland-credit", "portfolio-cc-2024"},
			{"debtor-1002", "Marcus Webb", "client-midland-credit", "portfolio-cc-2024"},
			{"debtor-1003", "Priya Raman", "client-lakeside-medical", "portfolio-med-2025"},
		}

		for _, d := range debtors {
			var exists int
			row := db.QueryRow("SELECT 1 FROM debtors WHERE id = $1", d.ID)
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO debtors (id, name, client_id, portfolio_id, created_at, updated_at) VALUES ($1, $2, $3, $4, now(), now())", d.ID, d.Name, d.ClientID, d.PortfolioID); err != nil {
				log.Fatalf("failed to insert debtor %s: %v", d.Name, err)
			}
			fmt.Println("Seeded debtor:", d.Name)
		}

		// one stored card so card payments can be exercised out of the box
		var exists int
		row := db.QueryRow("SELECT 1 FROM stored_cards WHERE debtor_id = $1", "debtor-1001")
		if err := row.Scan(&exists); err != nil {
			cardID := uuid.NewString()
			if _, err := db.Exec(
				"INSERT INTO stored_cards (id, debtor_id, brand, last4, expiry_month, expiry_year, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, now(), now())",
				cardID, "debtor-1001", "Visa", "1111", 12, 2030,
			); err != nil {
				log.Fatalf("failed to insert stored card: %v", err)
			}
			fmt.Println("Seeded stored card for debtor-1001:", cardID)
		}

		fmt.Println("Seed data loaded successfully")
	},
}
