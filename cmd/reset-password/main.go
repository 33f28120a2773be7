package main

import (
	"flag"

	"go-catalog-ws/internal/config"
	"go-catalog-ws/internal/repository"
	"go-catalog-ws/pkg/database"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 1. Load Env
	config.LoadEnv()
	cfg := config.Load()

	email := flag.String("email", cfg.AdminEmail, "account to reset")
	newPassword := flag.String("password", cfg.AdminPassword, "new password")
	flag.Parse()

	if len(*newPassword) < 6 {
		log.Fatal("❌ Password must be at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		LogLevel:    cfg.GormLogLevel(),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update
	if err := userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Infof("✅ Password for %s has been reset", *email)
}
