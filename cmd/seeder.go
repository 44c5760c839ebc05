package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"auto_review_rules", "claims", "user_permissions", "permissions", "users", "teaching_modules"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email string
			Name  string
			Perms []string
		}{
			{"lecturer@mail.com", "Lina Lecturer", []string{"submit_claims"}},
			{"coordinator@mail.com", "Carol Coordinator", []string{"verify_claims", "view_all_claims"}},
			{"manager@mail.com", "Mark Manager", []string{"approve_claims", "view_all_claims"}},
			{"admin@mail.com", "Ade Admin", []string{"admin"}},
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"submit_claims", "Can submit monthly claims"},
			{"verify_claims", "Can verify claims as coordinator"},
			{"approve_claims", "Can approve claims as manager"},
			{"view_all_claims", "Can view every user's claims"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", u.Email, u.Name, string(hash)).Error; err != nil {
					log.Fatalf("failed to insert user %s: %v", u.Email, err)
				}
				fmt.Println("Seeded user:", u.Email)
			} else {
				fmt.Printf("user %s already exists; will ensure permissions\n", u.Email)
			}

			var userID int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", u.Email, err)
			}

			for _, permName := range u.Perms {
				var pid int64
				if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
					log.Fatalf("permission not found %s: %v", permName, err)
				}

				var granted int
				if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&granted); err == nil {
					continue
				}

				if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", userID, pid).Error; err != nil {
					log.Fatalf("failed to grant permission %s to %s: %v", permName, u.Email, err)
				}
			}
		}

		fmt.Println("Users and permissions seeded successfully")

		modules := []struct {
			Code string
			Name string
		}{
			{"CS101", "Introduction to Programming"},
			{"CS205", "Data Structures and Algorithms"},
			{"CS310", "Distributed Systems"},
			{"MA150", "Discrete Mathematics"},
			{"SE220", "Software Engineering Practice"},
		}

		for _, m := range modules {
			var exists int
			row := db.Raw("SELECT 1 FROM teaching_modules WHERE code = ?", m.Code).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO teaching_modules (code, name, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", m.Code, m.Name).Error; err != nil {
					log.Fatalf("failed to insert teaching module %s: %v", m.Code, err)
				}
				fmt.Printf("Seeded teaching module: %s\n", m.Code)
			}
		}

		fmt.Println("Teaching modules seeded successfully")
	},
}
