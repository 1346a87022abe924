package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/config"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"github.com/udfnd/credittalk-admin-sub000/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load config
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all seeded accounts
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// Admin account
	adminAuthID := uuid.New()
	admin := model.User{
		AuthUserID: &adminAuthID,
		Email:      "admin@credittalk.local",
		Password:   string(hashedPassword),
		Name:       "Admin",
		IsAdmin:    true,
	}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to seed admin: %v", err)
	}
	log.Printf("🌱 Admin ready: %s / %s", admin.Email, password)

	// App users with device tokens
	log.Println("🌱 Seeding 10 app users with devices...")
	platforms := []string{"android", "ios"}
	tokenRepo := repository.NewDeviceTokenRepository(db)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		authID := uuid.New()
		user := model.User{
			AuthUserID: &authID,
			Email:      fmt.Sprintf("user%d@credittalk.local", i),
			Password:   string(hashedPassword),
			Name:       fmt.Sprintf("User %d", i),
		}
		if err := db.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
			log.Fatalf("❌ Failed to seed user %d: %v", i, err)
		}

		// Every user gets one device; every third gets a stale second one
		// so the resolver's recency pick is visible locally.
		platform := platforms[i%len(platforms)]
		if err := tokenRepo.Register(ctx, authID, fmt.Sprintf("seed-token-%d-primary", i), platform); err != nil {
			log.Fatalf("❌ Failed to seed device token: %v", err)
		}
		if i%3 == 0 {
			stale := time.Now().Add(-72 * time.Hour)
			staleToken := model.DeviceToken{
				UserID:   authID,
				Token:    fmt.Sprintf("seed-token-%d-stale", i),
				Platform: platform,
				Enabled:  true,
				LastSeen: &stale,
			}
			if err := db.Where("token = ?", staleToken.Token).FirstOrCreate(&staleToken).Error; err != nil {
				log.Fatalf("❌ Failed to seed device token: %v", err)
			}
		}

		// A help-desk question for odd users, a report for even ones
		if i%2 == 1 {
			q := model.HelpdeskQuestion{
				UserID:  &authID,
				Title:   fmt.Sprintf("Question from user %d", i),
				Content: "How do I verify a seller?",
			}
			if err := db.Where("title = ?", q.Title).FirstOrCreate(&q).Error; err != nil {
				log.Fatalf("❌ Failed to seed helpdesk question: %v", err)
			}
		} else {
			r := model.Report{
				ReporterID: &user.ID,
				Category:   "fraud",
				Content:    fmt.Sprintf("Report filed by user %d", i),
			}
			if err := db.Where("content = ?", r.Content).FirstOrCreate(&r).Error; err != nil {
				log.Fatalf("❌ Failed to seed report: %v", err)
			}
		}
	}

	log.Println("✅ Seeding complete")
}
