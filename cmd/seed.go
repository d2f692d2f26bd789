package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/crm-gateway/internal/config"
	"github.com/crmkit/crm-gateway/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo user, customers and interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo data...")

		if err := seedDemoData(sqlDB, cfg.Auth.BcryptCost); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

func seedDemoData(sqlDB *sqlx.DB, bcryptCost int) error {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	res, err := sqlDB.Exec(`
		INSERT INTO users (email, password_hash, created_at)
		VALUES ('demo@example.com', ?, NOW())
		ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash)
	`, string(hash))
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	userID, err := res.LastInsertId()
	if err != nil || userID == 0 {
		// duplicate-key path: look the row up
		if err := sqlDB.Get(&userID, `SELECT id FROM users WHERE email = 'demo@example.com'`); err != nil {
			return fmt.Errorf("lookup demo user: %w", err)
		}
	}

	customers := []struct {
		name, email, phone, company string
	}{
		{"Ada Lovelace", "ada@acme.test", "+1-555-0101", "ACME Corp"},
		{"Grace Hopper", "grace@navy.test", "+1-555-0102", "US Navy"},
		{"Alan Kay", "alan@parc.test", "+1-555-0103", ""},
	}

	for _, cu := range customers {
		res, err := sqlDB.Exec(`
			INSERT INTO customers (user_id, name, email, phone, company, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, NOW(), NOW())
		`, userID, cu.name, cu.email, cu.phone, cu.company)
		if err != nil {
			return fmt.Errorf("seed customer %q: %w", cu.name, err)
		}

		custID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		if _, err := sqlDB.Exec(`
			INSERT INTO interactions (customer_id, user_id, type, notes, created_at)
			VALUES (?, ?, 'call', 'introductory call', NOW())
		`, custID, userID); err != nil {
			return fmt.Errorf("seed interaction for %q: %w", cu.name, err)
		}
	}

	return nil
}
